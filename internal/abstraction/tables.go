package abstraction

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/opencoff/go-chd"
)

// preflopTable is the canonical-169-hand preflop bucket lookup, backed by a
// minimal perfect hash over the 169 canonical indices. It is built once at
// load time and queried on the hot path (once per preflop traversal node),
// which is exactly the static, build-once/read-many workload go-chd targets
// over a plain map.
type preflopTable struct {
	mph     *chd.CHD
	buckets []int32 // buckets[mph.Find(key)] = bucket assignment
}

func preflopKey(canonicalIdx int) []byte {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], uint16(canonicalIdx))
	return b[:]
}

func (t *preflopTable) Lookup(canonicalIdx int) int {
	slot := t.mph.Find(preflopKey(canonicalIdx))
	if int(slot) >= len(t.buckets) {
		return 0
	}
	return int(t.buckets[slot])
}

// preflopTableFile is the on-disk artifact: 169 bucket assignments indexed
// by canonical hand index, produced by the offline k-means build step (out
// of this module's scope; see SPEC_FULL.md §3).
type preflopTableFile struct {
	Buckets [169]int32 `json:"buckets"`
}

func loadPreflopTable(dir string) (*preflopTable, error) {
	raw, err := os.ReadFile(filepath.Join(dir, "preflop.json"))
	if err != nil {
		return nil, err
	}
	var f preflopTableFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("abstraction: decode preflop table: %w", err)
	}

	keys := make([][]byte, 169)
	for i := 0; i < 169; i++ {
		keys[i] = preflopKey(i)
	}
	builder := chd.NewBuilder()
	for _, k := range keys {
		builder.Add(k)
	}
	mph, err := builder.Freeze()
	if err != nil {
		return nil, fmt.Errorf("abstraction: build preflop perfect hash: %w", err)
	}

	buckets := make([]int32, 169)
	for i := 0; i < 169; i++ {
		buckets[mph.Find(keys[i])] = f.Buckets[i]
	}
	return &preflopTable{mph: mph, buckets: buckets}, nil
}

type clusterCentersFile struct {
	Centers []float64 `json:"centers"`
}

func loadClusterCenters(dir, name string) ([]float64, error) {
	raw, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return nil, err
	}
	var f clusterCentersFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("abstraction: decode cluster centers %s: %w", name, err)
	}
	if len(f.Centers) == 0 {
		return nil, fmt.Errorf("abstraction: empty cluster centers %s", name)
	}
	return f.Centers, nil
}
