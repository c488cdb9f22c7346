package commands

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/Sumatoshi-tech/strtab/pkg/heap"
)

const percentScale = 100

// renderStats writes st as a two-column table.
func renderStats(w io.Writer, st heap.Stats) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Metric", "Value"})
	tw.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})

	limit := "unlimited"
	if st.MemoryLimit > 0 {
		limit = humanize.IBytes(uint64(st.MemoryLimit))
	}

	tw.AppendRows([]table.Row{
		{"Strings", humanize.Comma(int64(st.Strings))},
		{"Buckets", humanize.Comma(int64(st.Buckets))},
		{"Load factor", fmt.Sprintf("%.2f", st.LoadFactor())},
		{"Longest chain", st.LongestChain},
		{"Hits", humanize.Comma(st.Hits)},
		{"Misses", humanize.Comma(st.Misses)},
		{"Hit rate", fmt.Sprintf("%.1f%%", st.HitRate()*percentScale)},
		{"Inserts", humanize.Comma(st.Inserts)},
		{"Removals", humanize.Comma(st.Removals)},
		{"Resizes", humanize.Comma(st.Resizes)},
		{"Collections", humanize.Comma(st.Collections)},
		{"Alloc failures", humanize.Comma(st.AllocFailures)},
		{"Bytes in use", humanize.IBytes(uint64(max(st.BytesInUse, 0)))},
		{"Memory limit", limit},
	})

	tw.Render()
}
