package cli

import (
	"fmt"
	"io"
	"strings"

	"SignalScanner/internal/domain"
)

// renderView prints a company view in the console report format.
func renderView(w io.Writer, view *domain.CompanyView) {
	c := view.Company

	fmt.Fprintf(w, "회사: %s", c.CompanyName)
	if c.Source != "" {
		fmt.Fprintf(w, " (출처: %s)", c.Source)
	}
	if !view.FromStore {
		fmt.Fprint(w, " [실시간 조회]")
	}
	fmt.Fprintln(w)

	if line := investmentLine(c); line != "" {
		fmt.Fprintln(w, "투자:", line)
	}
	if c.FoundedDate != "" {
		fmt.Fprintln(w, "설립:", c.FoundedDate)
	}
	if c.EmployeeCount != "" {
		fmt.Fprintf(w, "직원수: %s명\n", c.EmployeeCount)
	}

	if len(view.News) > 0 {
		fmt.Fprintln(w, "뉴스:")
		for _, n := range view.News {
			fmt.Fprintf(w, "- [%s] %s", n.Sentiment, n.Title)
			if n.Link != "" {
				fmt.Fprintf(w, " (%s)", n.Link)
			}
			fmt.Fprintln(w)
		}
	}

	if len(view.Jobs) > 0 {
		fmt.Fprintln(w, "채용:")
		for _, j := range view.Jobs {
			team := j.Team
			if team == "" {
				team = "Other"
			}
			fmt.Fprintf(w, "- %s: %s\n", team, j.Title)
		}
	}
}

func investmentLine(c *domain.PersistedCompany) string {
	var parts []string
	for _, v := range []string{c.FundingStage, c.FundingDate, c.Amount} {
		if v != "" {
			parts = append(parts, v)
		}
	}
	if c.Investors != "" {
		parts = append(parts, "투자사: "+c.Investors)
	}
	return strings.Join(parts, " | ")
}
