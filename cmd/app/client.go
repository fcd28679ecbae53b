package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wichananm65/fakturera/internal/client"
	"github.com/wichananm65/fakturera/internal/dashboard"
	"github.com/wichananm65/fakturera/internal/locale"
	"github.com/wichananm65/fakturera/internal/product"
	"github.com/wichananm65/fakturera/internal/session"
)

var errLoginRequired = errors.New("not logged in, run 'fakturera login' first")

// connect builds the API client and restores the saved session.
func (a *app) connect(ctx context.Context) (*client.Client, *session.Session, error) {
	c := client.New(a.cfg.Client.APIURL, a.cfg.Client.Timeout)
	s := session.New(c, session.NewFileStore(a.cfg.Client.SessionFile), a.log)
	if err := s.Restore(ctx); err != nil {
		return nil, nil, fmt.Errorf("restore session: %w", err)
	}
	return c, s, nil
}

// board returns a dashboard loaded in the requested language.
func (a *app) board(ctx context.Context, st *locale.State, sort, order string) (*dashboard.Dashboard, error) {
	c, s, err := a.connect(ctx)
	if err != nil {
		return nil, err
	}
	if !s.IsAuthenticated() {
		return nil, errLoginRequired
	}
	d := dashboard.New(c, s, a.log)
	if err := d.SetSort(sort, order); err != nil {
		return nil, err
	}
	if err := d.SetLanguage(ctx, st.Code()); err != nil {
		return nil, explain(st, err)
	}
	return d, nil
}

// explain turns dashboard failures into messages in the user's language.
func explain(st *locale.State, err error) error {
	switch {
	case errors.Is(err, dashboard.ErrLoggedOut):
		return errors.New(st.T("dashboard.logged_out"))
	case errors.Is(err, dashboard.ErrInvalidNumber):
		return errors.New(st.T("dashboard.invalid_num"))
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %w", st.T("dashboard.load_failed"), err)
	}
	return err
}

// langUsage is the help text of the --lang flags.
func langUsage() string {
	names := make([]string, 0, 2)
	for _, l := range locale.Languages() {
		names = append(names, fmt.Sprintf("%s (%s)", l.Code, l.Name))
	}
	return "language code: " + strings.Join(names, ", ")
}

func localeFor(lang string) (*locale.State, error) {
	st := locale.NewState()
	if err := st.Select(lang); err != nil {
		return nil, err
	}
	return st, nil
}

func newLoginCmd(a *app) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and save the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			_, s, err := a.connect(ctx)
			if err != nil {
				return err
			}
			if err := s.Login(ctx, username, password); err != nil {
				if client.IsUnauthorized(err) {
					return errors.New("invalid username or password")
				}
				return err
			}
			user, _ := s.User()
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", user.Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "account name")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, s, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			if err := s.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newProductsCmd(a *app) *cobra.Command {
	var lang, sort, order, article, search string
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Print the price list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := localeFor(lang)
			if err != nil {
				return err
			}
			d, err := a.board(cmd.Context(), st, sort, order)
			if err != nil {
				return err
			}
			d.SetArticleSearch(article)
			d.SetNameSearch(search)

			out := cmd.OutOrStdout()
			shown, _ := locale.Lookup(d.Language())
			col, dir := d.Sort()
			fmt.Fprintf(out, "%s (%s), %s %s\n", st.T("dashboard.price_list"), shown.Name, col, dir)
			return printProducts(out, st, d.Rows())
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "en", langUsage())
	cmd.Flags().StringVar(&sort, "sort", product.SortArticleNo, "sort column (article_no, name)")
	cmd.Flags().StringVar(&order, "order", product.OrderAsc, "sort order (asc, desc)")
	cmd.Flags().StringVar(&article, "article", "", "filter by article number")
	cmd.Flags().StringVar(&search, "search", "", "filter by product name")
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	var lang string
	cmd := &cobra.Command{
		Use:   "edit <id> <field> <value>",
		Short: "Change one field of a product",
		Long: `Change one field of a product. Editable fields are name, description,
in_price, price, unit and in_stock. Name and description are written in the
language given by --lang. An empty value clears in_price and in_stock.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid product id %q", args[0])
			}
			field, ok := product.ParseField(args[1])
			if !ok {
				names := make([]string, 0, len(product.Fields()))
				for _, f := range product.Fields() {
					names = append(names, string(f))
				}
				return fmt.Errorf("unknown field %q, expected one of: %s", args[1], strings.Join(names, ", "))
			}
			st, err := localeFor(lang)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			d, err := a.board(ctx, st, product.SortArticleNo, product.OrderAsc)
			if err != nil {
				return err
			}
			if err := d.Begin(id, field); err != nil {
				if errors.Is(err, dashboard.ErrUnknownRow) {
					return fmt.Errorf("product with id %d not found", id)
				}
				return err
			}
			if err := d.SetBuffer(id, field, args[2]); err != nil {
				return err
			}
			p, err := d.Commit(ctx, id, field)
			if err != nil {
				if errors.Is(err, dashboard.ErrLoggedOut) || errors.Is(err, dashboard.ErrInvalidNumber) {
					return explain(st, err)
				}
				return fmt.Errorf("%s: %w", st.T("dashboard.save_failed"), err)
			}
			return printProducts(cmd.OutOrStdout(), st, []product.Product{p})
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "en", langUsage())
	return cmd
}

func newTermsCmd(a *app) *cobra.Command {
	var lang string
	cmd := &cobra.Command{
		Use:   "terms",
		Short: "Print the terms and conditions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := localeFor(lang)
			if err != nil {
				return err
			}
			c := client.New(a.cfg.Client.APIURL, a.cfg.Client.Timeout)
			t, err := c.Terms(cmd.Context(), st.Code().String())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, st.T("terms.title"))
			fmt.Fprintln(out)
			fmt.Fprintln(out, t.Content)
			return nil
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "en", langUsage())
	return cmd
}

func printProducts(out io.Writer, st *locale.State, rows []product.Product) error {
	if len(rows) == 0 {
		fmt.Fprintln(out, st.T("dashboard.no_products"))
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "ID\t%s\t%s\t%s\t%s\t%s\t%s\n",
		st.T("dashboard.article_no"), st.T("dashboard.product"), st.T("dashboard.in_price"),
		st.T("dashboard.price"), st.T("dashboard.unit"), st.T("dashboard.in_stock"))
	for _, p := range rows {
		stock := dashboard.Display(p, product.FieldInStock)
		if stock == "" {
			stock = st.T("dashboard.not_apply")
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.ArticleNo, p.Name, dashboard.Display(p, product.FieldInPrice),
			dashboard.Display(p, product.FieldPrice), p.Unit, stock)
	}
	return w.Flush()
}
