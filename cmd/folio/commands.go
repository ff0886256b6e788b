package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/folioapp/folio/internal/api"
	"github.com/folioapp/folio/internal/collection"
	"github.com/folioapp/folio/internal/config"
	"github.com/folioapp/folio/internal/query"
	"github.com/folioapp/folio/internal/session"
)

// env bundles what every one-shot command needs.
type env struct {
	cfg      config.Config
	sessions *session.Manager
	client   *api.Client
	queries  *query.Queries
}

func newEnv() (*env, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagAPI != "" {
		cfg.APIBaseURL = flagAPI
	}

	sessions := session.NewManager(flagSession)
	client, err := api.NewClient(cfg.APIBaseURL, sessions)
	if err != nil {
		return nil, err
	}

	return &env{
		cfg:      cfg,
		sessions: sessions,
		client:   client,
		queries:  query.New(client, query.NewCache()),
	}, nil
}

// describeErr turns API failures into readable one-liners.
func describeErr(err error) error {
	switch {
	case err == nil:
		return nil
	case api.IsUnauthorized(err):
		return fmt.Errorf("not signed in or session expired, run 'folio login'")
	case api.IsDuplicate(err):
		return fmt.Errorf("book is already in your collection")
	default:
		return err
	}
}

func newLoginCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Sign in and persist the session token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			if password == "" {
				if password, err = promptPassword(); err != nil {
					return err
				}
			}
			token, err := e.client.Login(cmd.Context(), args[0], password)
			if err != nil {
				if api.IsUnauthorized(err) {
					return fmt.Errorf("invalid email or password")
				}
				return err
			}
			if err := e.sessions.SetToken(token); err != nil {
				return err
			}
			fmt.Println("Signed in.")
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the persisted session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			if err := e.sessions.Logout(); err != nil {
				return err
			}
			fmt.Println("Signed out.")
			return nil
		},
	}
}

func newRegisterCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "register <username> <email>",
		Short: "Create a new account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			if password == "" {
				if password, err = promptPassword(); err != nil {
					return err
				}
			}
			if err := e.client.Register(cmd.Context(), args[0], args[1], password); err != nil {
				return describeErr(err)
			}
			fmt.Println("Account created, run 'folio login' to sign in.")
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	return cmd
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			profile, err := e.queries.Profile(cmd.Context())
			if err != nil {
				return describeErr(err)
			}
			fmt.Printf("%s <%s>\n", profile.Username, profile.Email)
			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	var statusFilter string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your collection grouped by reading status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			books, err := e.queries.Books(cmd.Context())
			if err != nil {
				return describeErr(err)
			}

			var only api.BookStatus
			if statusFilter != "" {
				parsed, ok := api.ParseStatus(statusFilter)
				if !ok {
					return fmt.Errorf("unknown status %q", statusFilter)
				}
				only = parsed
			}

			groups := collection.GroupByStatus(books)
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			for _, status := range collection.StatusOrder {
				if only != "" && status != only {
					continue
				}
				group := groups[status]
				if len(group) == 0 {
					continue
				}
				fmt.Fprintf(w, "%s (%d)\n", status.Label(), len(group))
				for _, b := range group {
					fmt.Fprintf(w, "  %s\t%s\t%s\n", b.ID, b.Title, strings.Join(b.Authors, ", "))
				}
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&statusFilter, "status", "", "only show one status group")
	return cmd
}

func newSearchCmd() *cobra.Command {
	var filters api.SearchFilters
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search the external catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if filters.Empty() {
				return fmt.Errorf("at least one of --title or --author is required")
			}
			e, err := newEnv()
			if err != nil {
				return err
			}
			results, err := e.queries.Search(cmd.Context(), filters)
			if err != nil {
				return describeErr(err)
			}
			return printCatalog(results)
		},
	}
	cmd.Flags().StringVar(&filters.Title, "title", "", "title filter")
	cmd.Flags().StringVar(&filters.Author, "author", "", "author filter")
	cmd.Flags().StringVar(&filters.Subject, "subject", "", "subject filter")
	return cmd
}

func newRecommendCmd() *cobra.Command {
	var filters api.RecommendationFilters
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Fetch catalog recommendations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			results, err := e.queries.Recommendations(cmd.Context(), filters)
			if err != nil {
				return describeErr(err)
			}
			return printCatalog(results)
		},
	}
	cmd.Flags().StringVar(&filters.Title, "title", "", "seed title")
	cmd.Flags().StringVar(&filters.Subject, "subject", "", "seed subject")
	return cmd
}

func newAddCmd() *cobra.Command {
	var statusValue string
	cmd := &cobra.Command{
		Use:   "add <google-book-id>",
		Short: "Add a catalog book to your collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, ok := api.ParseStatus(statusValue)
			if !ok {
				return fmt.Errorf("unknown status %q", statusValue)
			}
			e, err := newEnv()
			if err != nil {
				return err
			}
			detail, err := e.queries.Details(cmd.Context(), args[0])
			if err != nil {
				return describeErr(err)
			}
			book, err := e.client.AddEntry(cmd.Context(), api.AddEntryFromCatalog(*detail, status))
			if err != nil {
				return describeErr(err)
			}
			fmt.Printf("Added %q as %s (entry %s).\n", book.Title, status.Label(), book.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&statusValue, "status", string(api.StatusPlanToRead), "initial reading status")
	return cmd
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <entry-id> <status>",
		Short: "Change a collection entry's reading status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, ok := api.ParseStatus(args[1])
			if !ok {
				return fmt.Errorf("unknown status %q", args[1])
			}
			e, err := newEnv()
			if err != nil {
				return err
			}
			book, err := e.client.UpdateStatus(cmd.Context(), args[0], status)
			if err != nil {
				return describeErr(err)
			}
			fmt.Printf("%q is now %s.\n", book.Title, status.Label())
			return nil
		},
	}
}

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <entry-id>",
		Short: "Remove an entry from your collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			if err := e.client.RemoveEntry(cmd.Context(), args[0]); err != nil {
				return describeErr(err)
			}
			fmt.Println("Removed.")
			return nil
		},
	}
}

func newPriceCmd() *cobra.Command {
	var country string
	cmd := &cobra.Command{
		Use:   "price <isbn>",
		Short: "Look up retail pricing for an ISBN",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			if country == "" {
				country = e.cfg.Country
			}
			quote, err := e.queries.Price(cmd.Context(), args[0], country)
			if err != nil {
				return describeErr(err)
			}
			if !quote.ForSale() {
				fmt.Printf("Not for sale in %s (%s).\n", country, quote.Saleability)
				return nil
			}
			if quote.RetailPrice != nil {
				fmt.Printf("Retail: %.2f %s\n", quote.RetailPrice.Amount, quote.RetailPrice.CurrencyCode)
			}
			if quote.ListPrice != nil {
				fmt.Printf("List:   %.2f %s\n", quote.ListPrice.Amount, quote.ListPrice.CurrencyCode)
			}
			if quote.BuyLink != "" {
				fmt.Println(quote.BuyLink)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&country, "country", "", "ISO country code (defaults to the configured country)")
	return cmd
}

func printCatalog(results []api.CatalogBook) error {
	if len(results) == 0 {
		fmt.Println("No results.")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tAUTHORS\tSUBJECT")
	for _, b := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", b.ID, b.Title, strings.Join(b.Authors, ", "), b.PrimarySubject())
	}
	return w.Flush()
}

func promptPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimSpace(line)
	if password == "" {
		return "", fmt.Errorf("password is empty")
	}
	return password, nil
}
