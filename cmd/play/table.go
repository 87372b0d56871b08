package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"mathquest/pkg/client"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

const (
	terminalWidthBackup = 80
	minProblemWidth     = 16
)

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// renderHistory prints one page of submissions as a table that fits width columns.
func renderHistory(w io.Writer, page *client.HistoryPage, width int) {
	if len(page.Submissions) == 0 {
		fmt.Fprintln(w, "No answers on this page.")
		return
	}

	const (
		resultCol = 3
		answerCol = 10
		dateCol   = 16
		gaps      = 4 * 2
	)
	problemCol := max(width-resultCol-answerCol*2-dateCol-gaps, minProblemWidth)

	header := []string{
		runewidth.FillRight("", resultCol),
		runewidth.FillRight("Problem", problemCol),
		runewidth.FillLeft("Yours", answerCol),
		runewidth.FillLeft("Answer", answerCol),
		runewidth.FillRight("When", dateCol),
	}
	fmt.Fprintln(w, strings.TrimRight(strings.Join(header, "  "), " "))

	for _, s := range page.Submissions {
		mark := "x"
		if s.IsCorrect {
			mark = "ok"
		}
		text := strings.Join(strings.Fields(s.Problem.ProblemText), " ")
		row := []string{
			runewidth.FillRight(mark, resultCol),
			runewidth.FillRight(runewidth.Truncate(text, problemCol, "..."), problemCol),
			runewidth.FillLeft(formatAnswer(s.UserAnswer), answerCol),
			runewidth.FillLeft(formatAnswer(s.Problem.CorrectAnswer), answerCol),
			runewidth.FillRight(s.CreatedAt.Local().Format("2006-01-02 15:04"), dateCol),
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(row, "  "), " "))
	}

	pg := page.Pagination
	fmt.Fprintf(w, "Page %d of %d (%d answers)", pg.CurrentPage, max(pg.TotalPages, 1), pg.TotalItems)
	if pg.HasNext {
		fmt.Fprintf(w, ", next: history %d", pg.CurrentPage+1)
	}
	fmt.Fprintln(w)
}

func formatAnswer(v float64) string {
	return runewidth.Truncate(strconv.FormatFloat(v, 'f', -1, 64), 10, "~")
}
