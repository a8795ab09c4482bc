package summary

import (
	"sort"
	"strings"

	"github.com/nhle/order-incidents/internal/model"
)

// NoSize groups order lines without a size.
const NoSize = "NO_SIZE"

// SizeKey is the size a line is grouped under.
func SizeKey(size string) string {
	if s := strings.TrimSpace(size); s != "" {
		return s
	}
	return NoSize
}

// Band is the name and number printed on one garment.
type Band struct {
	Name   string `json:"name"`
	Number string `json:"number"`
}

// SizeBands are the bands of every line of one size.
type SizeBands struct {
	Size  string `json:"size"`
	Bands []Band `json:"bands"`
}

// BandsBySize groups the band name and number of each line by size, sizes
// sorted, lines in input order. Lines without a band are kept so every
// garment of the size is listed.
func BandsBySize(lines []model.OrderLine) []SizeBands {
	pos := make(map[string]int)
	var out []SizeBands
	for _, l := range lines {
		key := SizeKey(l.Size)
		i, ok := pos[key]
		if !ok {
			i = len(out)
			pos[key] = i
			out = append(out, SizeBands{Size: key})
		}
		out[i].Bands = append(out[i].Bands, Band{Name: l.BandName, Number: l.BandNumber})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Size < out[j].Size })
	return out
}

// BandFileName names the export of one size, e.g. "Lions_FC_XL.xlsx".
// An empty club means every club.
func BandFileName(club, size string) string {
	if strings.TrimSpace(club) == "" {
		club = "All clubs"
	}
	return underscored(club) + "_" + underscored(size) + ".xlsx"
}

func underscored(s string) string {
	s = strings.Join(strings.Fields(s), "_")
	return strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' {
			return '-'
		}
		return r
	}, s)
}
