package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/expatpedia/directory/internal/directory"
	"github.com/expatpedia/directory/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const browseHelp = `commands:
  search <text>     free-text search (empty clears it)
  category <name>   filter by job category
  letter <A-Z>      filter by starting letter
  elite             show elite members only
  all               drop category, letter and elite filters
  sort [asc|desc]   set or toggle name order
  page <n> | next | prev
  flip <id>         toggle a member card
  clear             reset filters and search
  retry             reload after a failure
  show              print the current page
  quit`

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Interactively browse the member directory from stdin",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, dir, err := setup(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		page, err := dir.OpenMembers(ctx, models.NewQuery(), dir.SessionOptions(), nil)
		if err != nil {
			return err
		}
		defer page.Session.Close()

		printCategories(page.Categories)
		printMembers(page.Session.View())
		logrus.Info(browseHelp)

		if err := browse(ctx, page.Session, cmd.InOrStdin()); err != nil {
			return err
		}
		publish(ctx, cfg, "members", page.Session.Stats())
		return nil
	},
}

// browse reads commands line by line until quit or EOF, printing the page
// once the first results for each change are in.
func browse(ctx context.Context, s *directory.Session[models.Member], in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		quit, err := execBrowseCommand(s, scanner.Text())
		if err != nil {
			logrus.Warnf("⚠ %v", err)
			continue
		}
		if quit {
			return nil
		}
		if err := s.WaitFirstPage(ctx); err != nil {
			return err
		}
		printMembers(s.View())
	}
	return scanner.Err()
}

// execBrowseCommand applies one input line to the session.
func execBrowseCommand(s *directory.Session[models.Member], line string) (bool, error) {
	verb, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(verb) {
	case "", "show":
	case "quit", "exit", "q":
		return true, nil
	case "help":
		logrus.Info(browseHelp)
	case "search":
		s.SetSearch(arg)
	case "category":
		if arg == "" {
			return false, fmt.Errorf("category needs a name")
		}
		s.SetCategory(arg)
	case "letter":
		if len([]rune(arg)) != 1 {
			return false, fmt.Errorf("letter needs a single character")
		}
		s.SetLetter(arg)
	case "elite":
		s.SetElite(true)
	case "all":
		s.ShowAll()
	case "sort":
		if arg == "" {
			s.ToggleSort()
			break
		}
		order, err := models.ParseSortOrder(arg)
		if err != nil {
			return false, err
		}
		s.SetSort(order)
	case "page":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return false, fmt.Errorf("page needs a number: %w", err)
		}
		s.SetPage(n)
	case "next":
		s.NextPage()
	case "prev":
		s.PrevPage()
	case "flip":
		if arg == "" {
			return false, fmt.Errorf("flip needs a member id")
		}
		s.Flip(arg)
	case "clear":
		s.Clear()
	case "retry":
		s.Retry()
	default:
		return false, fmt.Errorf("unknown command %q (try help)", verb)
	}
	return false, nil
}
