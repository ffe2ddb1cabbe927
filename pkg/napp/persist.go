// Textual persistence per §6: one header line per parameter, the
// embedded pivot positions and ids (NAPP never loads pivots from an
// external file in this implementation, so pivotFile is always
// empty), then each chunk's postings, then a trailing LINE_QTY line
// so a truncated file is detected instead of silently under-loading.
package napp

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/annidx/annidx"
	"github.com/annidx/annidx/pkg/pivot"
)

// Save writes the index in NAPP's textual layout.
func (idx *Index[T]) Save(w io.Writer) error {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	bw := bufio.NewWriter(w)
	lines := 0
	writeLine := func(format string, args ...any) error {
		if _, err := fmt.Fprintf(bw, format+"\n", args...); err != nil {
			return err
		}
		lines++
		return nil
	}

	numPivot := 0
	if idx.pivots != nil {
		numPivot = idx.pivots.Len()
	}
	if err := writeLine("numPivot %d", numPivot); err != nil {
		return annidx.WrapError("napp.Save", err)
	}
	if err := writeLine("numPivotIndex %d", numPivot); err != nil {
		return annidx.WrapError("napp.Save", err)
	}
	if err := writeLine("chunkIndexSize %d", idx.cfg.ChunkIndexSize); err != nil {
		return annidx.WrapError("napp.Save", err)
	}
	if err := writeLine("indexQty %d", len(idx.chunks)); err != nil {
		return annidx.WrapError("napp.Save", err)
	}
	if err := writeLine("pivotFile %s", ""); err != nil {
		return annidx.WrapError("napp.Save", err)
	}

	ids := make([]string, numPivot)
	for i := 0; i < numPivot; i++ {
		ids[i] = strconv.FormatUint(uint64(idx.pivots.Object(i).ID), 10)
	}
	if err := writeLine("%s", strings.Join(ids, " ")); err != nil { // positions
		return annidx.WrapError("napp.Save", err)
	}
	if err := writeLine("%s", strings.Join(ids, " ")); err != nil { // object ids
		return annidx.WrapError("napp.Save", err)
	}

	for _, c := range idx.chunks {
		if err := writeLine("chunkId %d", c.startID); err != nil {
			return annidx.WrapError("napp.Save", err)
		}
		for p := 0; p < numPivot; p++ {
			var posting []string
			if p < len(c.postings) {
				posting = make([]string, len(c.postings[p]))
				for i, id := range c.postings[p] {
					posting[i] = strconv.FormatUint(uint64(id), 10)
				}
			}
			if err := writeLine("%s", strings.Join(posting, " ")); err != nil {
				return annidx.WrapError("napp.Save", err)
			}
		}
	}

	if _, err := fmt.Fprintf(bw, "LINE_QTY %d\n", lines+1); err != nil {
		return annidx.WrapError("napp.Save", err)
	}
	return bw.Flush()
}

// Load restores the index from Save's layout. objects must be the same
// dataset the index was built over, addressed by id.
func (idx *Index[T]) Load(r io.Reader, objects []*annidx.Object) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	var rawLines []string
	for sc.Scan() {
		rawLines = append(rawLines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return annidx.WrapError("napp.Load", err)
	}
	if len(rawLines) == 0 {
		return annidx.WrapError("napp.Load", annidx.ErrCorruption)
	}

	last := rawLines[len(rawLines)-1]
	var declaredLines int
	if _, err := fmt.Sscanf(last, "LINE_QTY %d", &declaredLines); err != nil {
		return annidx.WrapError("napp.Load", annidx.ErrCorruption)
	}
	if declaredLines != len(rawLines) {
		return annidx.WrapError("napp.Load", annidx.ErrCorruption)
	}

	pos := 0
	readInt := func(key string) (int, error) {
		var v int
		if pos >= len(rawLines) {
			return 0, annidx.ErrCorruption
		}
		if _, err := fmt.Sscanf(rawLines[pos], key+" %d", &v); err != nil {
			return 0, annidx.ErrCorruption
		}
		pos++
		return v, nil
	}

	numPivot, err := readInt("numPivot")
	if err != nil {
		return annidx.WrapError("napp.Load", err)
	}
	if _, err := readInt("numPivotIndex"); err != nil {
		return annidx.WrapError("napp.Load", err)
	}
	chunkIndexSize, err := readInt("chunkIndexSize")
	if err != nil {
		return annidx.WrapError("napp.Load", err)
	}
	indexQty, err := readInt("indexQty")
	if err != nil {
		return annidx.WrapError("napp.Load", err)
	}
	if pos >= len(rawLines) || !strings.HasPrefix(rawLines[pos], "pivotFile ") {
		return annidx.WrapError("napp.Load", annidx.ErrCorruption)
	}
	pos++

	positions, err := parseUintLine(rawLines, &pos)
	if err != nil {
		return annidx.WrapError("napp.Load", err)
	}
	if len(positions) != numPivot {
		return annidx.WrapError("napp.Load", annidx.ErrCorruption)
	}

	objByID := make(map[uint32]*annidx.Object, len(objects))
	for _, o := range objects {
		objByID[o.ID] = o
	}
	pivotObjs := make([]*annidx.Object, numPivot)
	for i, id := range positions {
		obj, ok := objByID[id]
		if !ok {
			return annidx.WrapError("napp.Load", annidx.ErrDataMutation)
		}
		pivotObjs[i] = obj
	}
	if _, err := parseUintLine(rawLines, &pos); err != nil { // object-ids line, redundant with positions here
		return annidx.WrapError("napp.Load", err)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.cfg.ChunkIndexSize = chunkIndexSize
	idx.cfg.NumPivot = numPivot
	idx.pivots = pivot.NewSet(pivotObjs)
	idx.objects = objects
	idx.chunks = make([]*chunk, 0, indexQty)

	for c := 0; c < indexQty; c++ {
		if pos >= len(rawLines) {
			return annidx.WrapError("napp.Load", annidx.ErrCorruption)
		}
		var startID int
		if _, err := fmt.Sscanf(rawLines[pos], "chunkId %d", &startID); err != nil {
			return annidx.WrapError("napp.Load", annidx.ErrCorruption)
		}
		pos++
		ch := &chunk{startID: startID, postings: make([][]uint32, numPivot)}
		size := 0
		for p := 0; p < numPivot; p++ {
			posting, err := parseUintLine(rawLines, &pos)
			if err != nil {
				return annidx.WrapError("napp.Load", err)
			}
			ch.postings[p] = posting
			for _, localID := range posting {
				if int(localID)+1 > size {
					size = int(localID) + 1
				}
			}
		}
		ch.size = size
		idx.chunks = append(idx.chunks, ch)
	}

	// Every object appears in exactly numPrefix postings of its chunk, so
	// the build-time signature length is recovered from the totals.
	totalEntries, totalObjects := 0, 0
	for _, ch := range idx.chunks {
		totalObjects += ch.size
		for _, p := range ch.postings {
			totalEntries += len(p)
		}
	}
	if totalObjects > 0 {
		idx.cfg.NumPrefix = totalEntries / totalObjects
	}
	return nil
}

func parseUintLine(rawLines []string, pos *int) ([]uint32, error) {
	if *pos >= len(rawLines) {
		return nil, annidx.ErrCorruption
	}
	line := rawLines[*pos]
	*pos++
	if strings.TrimSpace(line) == "" {
		return nil, nil
	}
	fields := strings.Fields(line)
	out := make([]uint32, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseUint(f, 10, 32)
		if err != nil {
			return nil, annidx.ErrCorruption
		}
		out[i] = uint32(v)
	}
	return out, nil
}
