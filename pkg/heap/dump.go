package heap

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// dumpValueWidth truncates long string values in dumps.
const dumpValueWidth = 40

// SnapshotEntry describes one string in a Snapshot.
type SnapshotEntry struct {
	Bucket     int    `json:"bucket"                yaml:"bucket"`
	Hash       string `json:"hash"                  yaml:"hash"`
	Value      string `json:"value"                 yaml:"value"`
	ByteLen    int    `json:"byte_len"              yaml:"byte_len"`
	CharLen    int    `json:"char_len"              yaml:"char_len"`
	ArrayIndex *int64 `json:"array_index,omitempty" yaml:"array_index,omitempty"`
	ASCII      bool   `json:"ascii"                 yaml:"ascii"`
	External   bool   `json:"external"              yaml:"external"`
	RefCount   int64  `json:"refcount"              yaml:"refcount"`
}

// Snapshot is a serialisable view of the string table in bucket order.
type Snapshot struct {
	Buckets int             `json:"buckets" yaml:"buckets"`
	Count   int             `json:"count"   yaml:"count"`
	Strings []SnapshotEntry `json:"strings" yaml:"strings"`
}

// Snapshot captures every linked string, bucket by bucket, head first.
func (hp *Heap) Snapshot() Snapshot {
	snap := Snapshot{
		Buckets: hp.strtab.size(),
		Count:   hp.strtab.count,
		Strings: make([]SnapshotEntry, 0, hp.strtab.count),
	}

	for bucket, head := range hp.strtab.buckets {
		for idx := head; idx != 0; idx = hp.objects.slot(idx).next {
			s := hp.objects.slot(idx)

			entry := SnapshotEntry{
				Bucket:   bucket,
				Hash:     fmt.Sprintf("%08x", s.hash),
				Value:    s.String(),
				ByteLen:  s.ByteLen(),
				CharLen:  s.CharLen(),
				ASCII:    s.IsASCII(),
				External: s.HasExternalData(),
				RefCount: s.refcount,
			}

			if v, ok := s.ArrayIndex(); ok {
				iv := int64(v)
				entry.ArrayIndex = &iv
			}

			snap.Strings = append(snap.Strings, entry)
		}
	}

	return snap
}

// Dump writes a table of every linked string to w.
func (hp *Heap) Dump(w io.Writer) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Bucket", "Hash", "Bytes", "Chars", "Flags", "Refs", "Value"})

	snap := hp.Snapshot()
	for _, e := range snap.Strings {
		tbl.AppendRow(table.Row{e.Bucket, e.Hash, e.ByteLen, e.CharLen, entryFlags(e), e.RefCount, truncate(e.Value)})
	}

	tbl.AppendFooter(table.Row{"", "", "", "", "", "Total", fmt.Sprintf("%d strings / %d buckets", snap.Count, snap.Buckets)})
	tbl.Render()
}

func entryFlags(e SnapshotEntry) string {
	var parts []string

	if e.ArrayIndex != nil {
		parts = append(parts, "arridx")
	}

	if e.ASCII {
		parts = append(parts, "ascii")
	}

	if e.External {
		parts = append(parts, "ext")
	}

	return strings.Join(parts, ",")
}

func truncate(v string) string {
	q := strconv.Quote(v)
	if len(q) <= dumpValueWidth {
		return q
	}

	return q[:dumpValueWidth-3] + "..."
}
