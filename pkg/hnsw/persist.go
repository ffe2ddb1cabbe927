// Binary persistence in the "optimized layout" of §6: a fixed
// nine-field uint64 header, then one fixed-stride record per element holding
// its layer-0 neighbor array and inlined object payload, then a
// variable-length block per element holding its upper-layer neighbor
// arrays. Grounded on the teacher's gob-based Save/Load
// (liliang-cn/sqvect, pkg/index/hnsw.go) for the overall
// "header, then body, then restore validates against the live dataset"
// shape, rebuilt here as the length-prefixed binary.Write/Read layout
// the specification requires instead of gob, since gob cannot express
// a fixed-stride random-access record.
package hnsw

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"math"

	"github.com/annidx/annidx"
)

const missingNeighbor = ^uint32(0)

type header struct {
	TotalElements   uint64
	MemoryPerObject uint64
	OffsetLevel0    uint64
	OffsetData      uint64
	MaxLevel        uint64
	EntryPointID    uint64
	MaxM            uint64
	MaxM0           uint64
	DistFuncType    uint64
}

// Save writes the graph in the optimized binary layout. Every object
// must carry a vector of the same dimension; Save returns a
// CorruptionError-flavored error otherwise since the fixed-stride
// layout cannot represent ragged payloads.
func (idx *Index[T]) Save(w io.Writer) error {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	n := len(idx.objects)
	dim := 0
	for _, o := range idx.objects {
		if o == nil {
			continue
		}
		dim = len(o.Vector)
		break
	}
	for _, o := range idx.objects {
		if o != nil && len(o.Vector) != dim {
			return annidx.WrapError("hnsw.Save", errors.Join(annidx.ErrCorruption, errors.New("ragged object vectors, cannot use fixed-stride layout")))
		}
	}

	offsetLevel0 := uint64(0)
	offsetData := uint64(4 + idx.cfg.MaxM0*4)
	memoryPerObject := offsetData + uint64(dim*4)

	entry, maxLevel := idx.graph.EntryPoint()
	h := header{
		TotalElements:   uint64(n),
		MemoryPerObject: memoryPerObject,
		OffsetLevel0:    offsetLevel0,
		OffsetData:      offsetData,
		MaxLevel:        uint64(maxLevel),
		EntryPointID:    uint64(entry),
		MaxM:            uint64(idx.cfg.M),
		MaxM0:           uint64(idx.cfg.MaxM0),
		DistFuncType:    0,
	}

	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, &h); err != nil {
		return annidx.WrapError("hnsw.Save", err)
	}

	upperBlocks := make([][]byte, n)
	for objID := 0; objID < n; objID++ {
		nodeID, ok := idx.graph.NodeIDFor(uint32(objID))
		record := make([]byte, memoryPerObject)
		if ok {
			level0 := idx.graph.neighborsSnapshot(nodeID, 0)
			binary.LittleEndian.PutUint32(record[0:4], uint32(len(level0)))
			for i := 0; i < int(idx.cfg.MaxM0); i++ {
				off := 4 + i*4
				if i < len(level0) {
					binary.LittleEndian.PutUint32(record[off:off+4], level0[i])
				} else {
					binary.LittleEndian.PutUint32(record[off:off+4], missingNeighbor)
				}
			}
			obj := idx.objects[objID]
			for d := 0; d < dim; d++ {
				off := int(offsetData) + d*4
				binary.LittleEndian.PutUint32(record[off:off+4], math.Float32bits(obj.Vector[d]))
			}
			upperBlocks[objID] = encodeUpperLevels(idx.graph, nodeID)
		} else {
			binary.LittleEndian.PutUint32(record[0:4], 0)
			for i := 0; i < int(idx.cfg.MaxM0); i++ {
				off := 4 + i*4
				binary.LittleEndian.PutUint32(record[off:off+4], missingNeighbor)
			}
		}
		if _, err := bw.Write(record); err != nil {
			return annidx.WrapError("hnsw.Save", err)
		}
	}

	for _, block := range upperBlocks {
		var sizeBuf [4]byte
		binary.LittleEndian.PutUint32(sizeBuf[:], uint32(len(block)))
		if _, err := bw.Write(sizeBuf[:]); err != nil {
			return annidx.WrapError("hnsw.Save", err)
		}
		if len(block) > 0 {
			if _, err := bw.Write(block); err != nil {
				return annidx.WrapError("hnsw.Save", err)
			}
		}
	}
	return bw.Flush()
}

func encodeUpperLevels(g *Graph, nodeID int) []byte {
	level := g.NodeLevel(nodeID)
	if level == 0 {
		return nil
	}
	var out []byte
	for l := 1; l <= level; l++ {
		list := g.neighborsSnapshot(nodeID, l)
		var countBuf [4]byte
		binary.LittleEndian.PutUint32(countBuf[:], uint32(len(list)))
		out = append(out, countBuf[:]...)
		for _, id := range list {
			var idBuf [4]byte
			binary.LittleEndian.PutUint32(idBuf[:], id)
			out = append(out, idBuf[:]...)
		}
	}
	return out
}

// Load restores the graph from Save's layout. objects must be the same
// dataset (by id and vector contents) the index was built over;
// Load validates object count and raises a DataMutationError on
// mismatch, and a CorruptionError on a truncated or malformed stream.
func (idx *Index[T]) Load(r io.Reader, objects []*annidx.Object) error {
	br := bufio.NewReader(r)
	var h header
	if err := binary.Read(br, binary.LittleEndian, &h); err != nil {
		return annidx.WrapError("hnsw.Load", errors.Join(annidx.ErrCorruption, err))
	}
	if uint64(len(objects)) != h.TotalElements {
		return annidx.WrapError("hnsw.Load", annidx.ErrDataMutation)
	}

	idx.graph = NewGraph()
	idx.objects = make([]*annidx.Object, h.TotalElements)
	idx.cfg.M = int(h.MaxM)
	idx.cfg.MaxM0 = int(h.MaxM0)

	dim := int((h.MemoryPerObject - h.OffsetData) / 4)
	nodeIDs := make([]int, h.TotalElements)
	level0Lists := make([][]uint32, h.TotalElements)

	for objID := uint64(0); objID < h.TotalElements; objID++ {
		record := make([]byte, h.MemoryPerObject)
		if _, err := io.ReadFull(br, record); err != nil {
			return annidx.WrapError("hnsw.Load", errors.Join(annidx.ErrCorruption, err))
		}
		count := binary.LittleEndian.Uint32(record[0:4])
		list := make([]uint32, 0, count)
		for i := 0; i < int(h.MaxM0) && uint32(i) < count; i++ {
			off := 4 + i*4
			list = append(list, binary.LittleEndian.Uint32(record[off:off+4]))
		}
		level0Lists[objID] = list

		obj := objects[objID]
		idx.objects[objID] = obj
		if obj != nil && len(obj.Vector) != dim && dim > 0 {
			return annidx.WrapError("hnsw.Load", annidx.ErrDataMutation)
		}
	}

	upperBlocks := make([][]byte, h.TotalElements)
	for objID := uint64(0); objID < h.TotalElements; objID++ {
		var sizeBuf [4]byte
		if _, err := io.ReadFull(br, sizeBuf[:]); err != nil {
			return annidx.WrapError("hnsw.Load", errors.Join(annidx.ErrCorruption, err))
		}
		size := binary.LittleEndian.Uint32(sizeBuf[:])
		if size > 0 {
			block := make([]byte, size)
			if _, err := io.ReadFull(br, block); err != nil {
				return annidx.WrapError("hnsw.Load", errors.Join(annidx.ErrCorruption, err))
			}
			upperBlocks[objID] = block
		}
	}

	// First pass: re-create nodes at the right levels.
	for objID := uint64(0); objID < h.TotalElements; objID++ {
		level := decodeUpperLevelCount(upperBlocks[objID])
		nodeIDs[objID] = idx.graph.addNode(uint32(objID), level)
	}
	// Second pass: install neighbor lists now that every node exists.
	for objID := uint64(0); objID < h.TotalElements; objID++ {
		idx.graph.setNeighbors(nodeIDs[objID], 0, level0Lists[objID])
		upper := decodeUpperLevels(upperBlocks[objID])
		for l, list := range upper {
			idx.graph.setNeighbors(nodeIDs[objID], l+1, list)
		}
	}

	idx.graph.mu.Lock()
	idx.graph.entryPoint = int(h.EntryPointID)
	idx.graph.maxLevel = int(h.MaxLevel)
	idx.graph.mu.Unlock()

	idx.ensureVisitedPool(len(idx.objects))
	return nil
}

func decodeUpperLevelCount(block []byte) int {
	levels := 0
	pos := 0
	for pos < len(block) {
		count := binary.LittleEndian.Uint32(block[pos : pos+4])
		pos += 4 + int(count)*4
		levels++
	}
	return levels
}

func decodeUpperLevels(block []byte) [][]uint32 {
	var out [][]uint32
	pos := 0
	for pos < len(block) {
		count := binary.LittleEndian.Uint32(block[pos : pos+4])
		pos += 4
		list := make([]uint32, count)
		for i := uint32(0); i < count; i++ {
			list[i] = binary.LittleEndian.Uint32(block[pos : pos+4])
			pos += 4
		}
		out = append(out, list)
	}
	return out
}
