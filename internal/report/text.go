package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"provcluster/internal/analysis"
	"provcluster/internal/config"
)

// WriteText writes the Turkish field-selection report: a cluster means
// table followed by each profile with its suggested cities.
func WriteText(w io.Writer, cfg *config.Config, res *analysis.Result, profiles []Profile) error {
	labels := make([]string, len(res.Features))
	for i, f := range res.Features {
		labels[i] = cfg.Label(f)
	}

	var b strings.Builder
	b.WriteString(cfg.Report.TextTitle + "\n")
	b.WriteString(strings.Repeat("=", 50) + "\n")
	fmt.Fprintf(&b, "\nBu rapor, şehirleri demografik özelliklerine göre (%s) %d ana gruba ayırır.\n",
		strings.Join(labels, ", "), res.Clusters())
	fmt.Fprintf(&b, "Analize giren şehir sayısı: %d, eksik veri nedeniyle dışarıda kalan: %d.\n\n",
		res.Assignment.Len(), res.Excluded())

	b.WriteString("1. KÜME ORTALAMALARI (YÜZDELER)\n")
	table := tablewriter.NewWriter(&b)
	table.SetAutoFormatHeaders(false)
	table.SetHeader(append([]string{"Küme", "Şehir"}, labels...))
	for j, s := range res.Summaries {
		row := []string{strconv.Itoa(j), strconv.Itoa(s.Size)}
		for d, f := range res.Features {
			row = append(row, formatValue(cfg, f, s.Means[d]))
		}
		table.Append(row)
	}
	table.Render()
	b.WriteString("*Değerler ortalamadır. Oran sütunları yüzde (%) cinsindendir.\n\n")

	b.WriteString("2. PROFİL DETAYLARI VE ŞEHİR ÖNERİLERİ\n")
	b.WriteString(strings.Repeat("=", 50) + "\n")
	for j, s := range res.Summaries {
		fmt.Fprintf(&b, "\n### %s\n", profiles[j].Name)
		parts := make([]string, len(res.Features))
		for d, f := range res.Features {
			parts[d] = fmt.Sprintf("%s: %s", labels[d], formatValue(cfg, f, s.Means[d]))
		}
		fmt.Fprintf(&b, "Özet: %s\n", strings.Join(parts, ", "))
		b.WriteString("\nÖnerilen Şehirler (Örnekler):\n")
		for _, r := range res.Representatives[j] {
			fmt.Fprintf(&b, "  * %s\n", r.City)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
