package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/actorgraph/display"
	"github.com/teranos/actorgraph/errors"
	"github.com/teranos/actorgraph/graph"
	"github.com/teranos/actorgraph/logger"
	"github.com/teranos/actorgraph/models"
	"github.com/teranos/actorgraph/repository"
	"github.com/teranos/actorgraph/session"
	"github.com/teranos/actorgraph/sym"
)

// ExploreCmd runs one exploration step without a browser
var ExploreCmd = &cobra.Command{
	Use:   "explore <actor name>",
	Short: sym.Explore + " Expand one actor headlessly and print the resulting graph",
	Long: `Start an exploration session on the configured store (or explore.proxy_url),
load the named actor and select it, which adds its top collaborators. The
resulting graph is printed as a summary or, with --json, as the same
payload websocket clients receive.

Examples:
  actorgraph explore "Zac Efron"
  actorgraph explore "Hugh Jackman" --expand 10 --top 3
  actorgraph explore Zendaya --json | jq '.nodes | length'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExplore,
}

var (
	exploreExpand int
	exploreTop    int
)

func init() {
	ExploreCmd.Flags().StringVar(&dbPathOverride, "db-path", "", "SQLite database path (overrides config)")
	ExploreCmd.Flags().IntVar(&exploreExpand, "expand", 0, "Collaborators added by the selection (default explore.expand_limit)")
	ExploreCmd.Flags().IntVar(&exploreTop, "top", 5, "Number of heaviest links to list")
	ExploreCmd.Flags().Bool("json", false, "Print the graph payload as JSON")
}

func runExplore(cmd *cobra.Command, args []string) error {
	name := strings.Join(args, " ")
	verbosity, _ := cmd.Flags().GetCount("verbose")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()

	st, _, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	repo, _, err := newRepository(cfg, st)
	if err != nil {
		return err
	}

	expand := exploreExpand
	if expand <= 0 {
		expand = cfg.GetExpandLimit()
	}

	ex, err := explore(ctx, repo, name, session.WithExpandLimit(expand), session.WithMaxSelected(cfg.GetMaxSelected()))
	if err != nil {
		return err
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd.OutOrStdout(), ex.Graph)
	}
	if logger.ShouldOutput(verbosity, logger.OutputProgress) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Explored in %s, %d actors cached\n", ex.Elapsed.Round(time.Millisecond), ex.Cached)
	}
	return printGraphSummary(cmd.OutOrStdout(), name, expand, ex, exploreTop)
}

// exploration is the outcome of one headless session
type exploration struct {
	Graph   *graph.Graph
	Shared  map[string][]models.Movie // keyed by linkKey, for the heaviest links
	Cached  int                       // actors in the repository cache afterwards
	Elapsed time.Duration
}

// explore runs a session that loads name and selects it, returning the
// graph a browser would show after the first click. Shared movies are
// resolved for the top heaviest links.
func explore(ctx context.Context, repo *repository.Repository, name string, opts ...session.Option) (*exploration, error) {
	start := time.Now()
	opts = append(opts, session.WithLogger(logger.ComponentLogger("explore")))
	sess := session.New(ctx, repo, nil, opts...)
	defer sess.Close()

	if err := sess.Start(name); err != nil {
		return nil, err
	}

	actor, err := repo.ActorByName(ctx, name)
	if err != nil {
		return nil, errors.Wrapf(err, "find %q", name)
	}
	if err := sess.Handle(session.ClientMessage{Type: session.MsgSelect, ActorID: actor.ID}); err != nil {
		return nil, err
	}

	ex := &exploration{
		Graph:  sess.Snapshot(),
		Shared: make(map[string][]models.Movie),
	}
	movies := sess.Graph().Movies()
	for _, l := range ex.Graph.Heaviest(-1) {
		ex.Shared[linkKey(l)] = repo.MoviesBetween(l.Source, l.Target, movies)
	}
	ex.Cached = repo.CacheSize()
	ex.Elapsed = time.Since(start)
	return ex, nil
}

func printGraphSummary(w io.Writer, name string, expand int, ex *exploration, top int) error {
	g := ex.Graph
	fmt.Fprintf(w, "Explored %q (expand limit %d)\n", name, expand)
	fmt.Fprintf(w, "Nodes: %d  Links: %d  Movies: %d\n\n",
		g.Meta.Stats.TotalNodes, g.Meta.Stats.TotalEdges, g.Meta.Stats.Movies)

	data := pterm.TableData{{"", "ACTOR", "MOVIES", "REVENUE", "RATING", ""}}
	for _, n := range g.Nodes {
		mark := ""
		if n.Selected {
			mark = "selected"
		}
		data = append(data, []string{
			sym.Node(n.Selected),
			n.Label,
			strconv.Itoa(n.MovieCount),
			fmt.Sprintf("%.0f", n.RevenueTotal),
			fmt.Sprintf("%.1f", n.VoteAverage),
			mark,
		})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithWriter(w).WithData(data).Render(); err != nil {
		return err
	}

	heaviest := g.Heaviest(top)
	if len(heaviest) == 0 {
		return nil
	}
	fmt.Fprintf(w, "\nHeaviest links:\n")
	for _, l := range heaviest {
		fmt.Fprintf(w, "  %s %s%s%s %s  %s %d: %s\n",
			label(g, l.Source), sym.Costar, sym.Costar, sym.Costar, label(g, l.Target),
			sym.Movie, l.Weight, movieList(ex.Shared[linkKey(l)], l.MovieTitles))
	}
	return nil
}

// movieList prints shared movies with their year, falling back to the
// link's titles when the movies were not resolved
func movieList(movies []models.Movie, titles []string) string {
	if len(movies) == 0 {
		return strings.Join(titles, ", ")
	}
	parts := make([]string, len(movies))
	for i, m := range movies {
		parts[i] = fmt.Sprintf("%s (%d)", m.Title, m.Year)
	}
	return strings.Join(parts, ", ")
}

func linkKey(l graph.Link) string {
	return l.Source + "|" + l.Target
}

func label(g *graph.Graph, id string) string {
	if n, ok := g.Node(id); ok {
		return n.Label
	}
	return id
}
