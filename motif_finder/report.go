package motif_finder

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"nullomer_go/rates"
)

// Header returns the fixed-width header line for res.
func Header(res *Result) string {
	if res.Mode == ModePeptide {
		return fmt.Sprintf("%10s%15s%10s%25s%25s%30s%30s%20s\n",
			"Motif,", "Count,", "%Match,", "ExpectedRateByCodons,", "ExpectedRateByAARates,",
			"ExpectedCountByCodonRates,", "ExpectedCountByAARates,",
			"(TotalPeptides="+strconv.FormatUint(res.Denominator, 10)+")")
	}
	return fmt.Sprintf("%10s%10s%10s%25s%25s%20s\n",
		"Motif,", "Count,", "%Match,", "ExpectedRateByCodons,", "ExpectedRateByAARates,",
		"(TotalNullomers="+strconv.FormatUint(res.Denominator, 10)+")")
}

// WriteReport writes the header and one row per motif, most frequent first.
func WriteReport(w io.Writer, res *Result, space *Space, baselines rates.Baselines) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(Header(res)); err != nil {
		return err
	}
	total := float64(res.Denominator)
	for _, o := range res.Table.Ranked() {
		motif := space.Motif(o.Key)
		count := strconv.FormatUint(o.Count, 10)
		var pct float64
		if res.Denominator > 0 {
			pct = 100 * float64(o.Count) / total
		}
		codon := baselines.Codon.Rate(motif)
		observed := baselines.Observed.Rate(motif)

		var err error
		if res.Mode == ModePeptide {
			_, err = fmt.Fprintf(bw, "%10s%15s%8.3f%%,%24.5E,%24.5E,%29.5E,%29.5E,\n",
				motif+",", count+",", pct, codon, observed, codon*total, observed*total)
		} else {
			_, err = fmt.Fprintf(bw, "%10s%10s%8.3f%%,%24.5E,%24.5E,\n",
				motif+",", count+",", pct, codon, observed)
		}
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}
