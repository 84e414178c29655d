package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"media-cleaner/internal/grouping"
	"media-cleaner/internal/scanner"
)

// keepMark flags the group member the best-shot rule selects.
const keepMark = "keep"

// Render returns the full text report for one scan result: a summary line,
// the blurry images, the similar-image groups with the suggested keeper
// marked, and the duplicate videos. Sections with nothing to show collapse
// to a single line.
func Render(result *scanner.ScanResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Scanned %d files: %d blurry, %d similar group(s), %d duplicate video group(s)\n",
		result.ScannedCount, len(result.BlurImages),
		len(result.SimilarGroups), len(result.DuplicateVideos))

	b.WriteString("\nBlurry images\n")
	b.WriteString(Blurry(result.BlurImages))

	b.WriteString("\nSimilar images\n")
	b.WriteString(SimilarGroups(result.SimilarGroups))

	b.WriteString("\nDuplicate videos\n")
	b.WriteString(DuplicateVideos(result.DuplicateVideos))

	return b.String()
}

// Blurry renders the blurry-image table in processing order.
func Blurry(images []scanner.BlurImage) string {
	if len(images) == 0 {
		return "none\n"
	}

	rows := make([][]string, 0, len(images))
	for _, img := range images {
		rows = append(rows, []string{
			img.Path,
			fmt.Sprintf("%.2f", img.BlurScore),
			fmt.Sprintf("%d", img.FaceCount),
		})
	}
	return renderTable(
		[]string{"File", "Blur Score", "Faces"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight},
	) + "\n"
}

// SimilarGroups renders one row per group member, grouped under the shared
// hash, with the best shot marked. Groups are ordered by hash and members
// keep their arrival order.
func SimilarGroups(groups map[string][]grouping.ImageRecord) string {
	if len(groups) == 0 {
		return "none\n"
	}

	hashes := make([]string, 0, len(groups))
	for hash := range groups {
		hashes = append(hashes, hash)
	}
	sort.Strings(hashes)

	var rows [][]string
	for _, hash := range hashes {
		members := groups[hash]
		best := grouping.SelectBestShot(members)
		for _, m := range members {
			mark := ""
			if m.Path == best {
				mark = keepMark
			}
			rows = append(rows, []string{
				hash,
				m.Path,
				fmt.Sprintf("%.2f", m.BlurScore),
				fmt.Sprintf("%d", m.FaceCount),
				fmt.Sprintf("%d", m.Size),
				mark,
			})
		}
	}
	return renderTable(
		[]string{"Group", "File", "Blur Score", "Faces", "Bytes", ""},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
	) + "\n"
}

// DuplicateVideos renders one row per duplicate-video group member, ordered
// by group key.
func DuplicateVideos(groups map[string][]grouping.VideoRecord) string {
	if len(groups) == 0 {
		return "none\n"
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var rows [][]string
	for _, key := range keys {
		for _, m := range groups[key] {
			rows = append(rows, []string{
				key,
				m.Path,
				fmt.Sprintf("%.1fs", m.Duration),
			})
		}
	}
	return renderTable(
		[]string{"Group", "File", "Duration"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight},
	) + "\n"
}

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}
