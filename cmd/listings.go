package cmd

import (
	"fmt"
	"strings"

	"github.com/expatpedia/directory/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagSearch   string
	flagCategory string
	flagLetter   string
	flagElite    bool
	flagSort     string
	flagPage     int
	flagNoFill   bool
	flagPostID   string
)

const separator = "────────────────────────────────────────"

var membersCmd = &cobra.Command{
	Use:   "members",
	Short: "List one page of the member directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := queryFromFlags()
		if err != nil {
			return err
		}
		cfg, dir, err := setup(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		opts := dir.SessionOptions()
		opts.NoFill = flagNoFill
		page, err := dir.OpenMembers(ctx, q, opts, nil)
		if err != nil {
			return err
		}
		defer page.Session.Close()

		if err := page.Session.Wait(ctx); err != nil {
			return err
		}
		printCategories(page.Categories)
		printMembers(page.Session.View())
		publish(ctx, cfg, "members", page.Session.Stats())
		return nil
	},
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List one page of events",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, dir, err := setup(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		opts := dir.SessionOptions()
		opts.NoFill = flagNoFill
		session := dir.OpenEvents(ctx, models.NewQuery().WithSearch(flagSearch).WithPage(flagPage), opts, nil)
		defer session.Close()
		if err := session.Wait(ctx); err != nil {
			return err
		}

		view := session.View()
		printHeader("📅 Events", view.Page, view.TotalPages, view.State)
		for i, ev := range view.Items {
			logrus.Infof("  %d. %s | %s | %s", i+1, ev.Title, orDash(ev.Date), orDash(ev.Location))
		}
		printFooter(view.Markers, view.Page, view.Error)
		publish(ctx, cfg, "events", session.Stats())
		return nil
	},
}

var blogCmd = &cobra.Command{
	Use:   "blog",
	Short: "List blog posts, or show one with --id",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, dir, err := setup(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		if flagPostID != "" {
			post, err := dir.BlogPost(ctx, flagPostID)
			if err != nil {
				return err
			}
			logrus.WithFields(logrus.Fields{
				"author": post.Author,
				"date":   post.Date,
				"media":  post.Media,
				"video":  post.MediaIsVideo,
			}).Infof("📰 %s", post.Title)
			logrus.Info(post.Excerpt)
			return nil
		}

		opts := dir.SessionOptions()
		opts.NoFill = flagNoFill
		session := dir.OpenBlog(ctx, models.NewQuery().WithSearch(flagSearch).WithPage(flagPage), opts, nil)
		defer session.Close()
		if err := session.Wait(ctx); err != nil {
			return err
		}

		view := session.View()
		printHeader("📰 Blog", view.Page, view.TotalPages, view.State)
		for i, post := range view.Items {
			logrus.Infof("  %d. [%s] %s: %s", i+1, post.ID, post.Title, post.Excerpt)
		}
		printFooter(view.Markers, view.Page, view.Error)
		publish(ctx, cfg, "blog", session.Stats())
		return nil
	},
}

var galleryCmd = &cobra.Command{
	Use:   "gallery",
	Short: "List gallery images",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, dir, err := setup(cmd)
		if err != nil {
			return err
		}
		images, err := dir.Gallery(cmd.Context())
		if err != nil {
			return err
		}
		logrus.Infof("🖼️  Gallery (%d):", len(images))
		for i, img := range images {
			logrus.Infof("  %d. %s %s", i+1, orDash(img.Title), img.ImageURL)
		}
		return nil
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List job categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, dir, err := setup(cmd)
		if err != nil {
			return err
		}
		categories, err := dir.Categories(cmd.Context())
		if err != nil {
			return err
		}
		printCategories(categories)
		return nil
	},
}

func init() {
	membersCmd.Flags().StringVar(&flagSearch, "search", "", "Free-text search")
	membersCmd.Flags().StringVar(&flagCategory, "category", "", "Job category name")
	membersCmd.Flags().StringVar(&flagLetter, "letter", "", "Starting letter")
	membersCmd.Flags().BoolVar(&flagElite, "elite", false, "Only elite members")
	membersCmd.Flags().StringVar(&flagSort, "sort", "asc", "Name order: asc or desc")
	membersCmd.MarkFlagsMutuallyExclusive("category", "letter", "elite")

	for _, c := range []*cobra.Command{membersCmd, eventsCmd, blogCmd} {
		c.Flags().IntVar(&flagPage, "page", 1, "Page to show")
		c.Flags().BoolVar(&flagNoFill, "no-fill", false, "Stop after the first backend page")
	}
	eventsCmd.Flags().StringVar(&flagSearch, "search", "", "Free-text search")
	blogCmd.Flags().StringVar(&flagSearch, "search", "", "Free-text search")
	blogCmd.Flags().StringVar(&flagPostID, "id", "", "Show a single post")
}

func queryFromFlags() (models.Query, error) {
	event := models.LambdaEvent{
		Search:   flagSearch,
		Category: flagCategory,
		Letter:   flagLetter,
		Sort:     flagSort,
		Elite:    flagElite,
		Page:     flagPage,
	}
	return event.Query()
}

func printMembers(view models.View[models.Member]) {
	printHeader("👥 Members", view.Page, view.TotalPages, view.State)
	if view.Empty() {
		logrus.Info("  (no members match)")
	}
	for i, m := range view.Items {
		line := fmt.Sprintf("  %d. %s", i+1, m.Name)
		if m.IsElite {
			line += " ⭐"
		}
		if m.Position != "" || m.OccupationCategory != "" {
			line += fmt.Sprintf(" | %s", strings.Trim(m.Position+" / "+m.OccupationCategory, " /"))
		}
		if m.HasEmail() {
			line += " | ✉️  " + m.Email
		}
		if m.HasPhone() {
			line += " | 📞 " + m.Phone
		}
		logrus.Info(line)
	}
	printFooter(view.Markers, view.Page, view.Error)
}

func printCategories(categories []models.Category) {
	if len(categories) == 0 {
		logrus.Info("🏷️  Categories: (none)")
		return
	}
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	logrus.Infof("🏷️  Categories (%d): %s", len(categories), strings.Join(names, ", "))
}

func printHeader(title string, page, total int, state models.LoadState) {
	logrus.Info(separator)
	logrus.WithField("state", state).Infof("%s page %d of %d", title, page, total)
}

func printFooter(markers []models.PageMarker, page int, errMsg string) {
	if len(markers) > 0 {
		logrus.Info(models.FormatMarkers(markers, page))
	}
	if errMsg != "" {
		logrus.Warnf("⚠ %s", errMsg)
	}
	logrus.Info(separator)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
