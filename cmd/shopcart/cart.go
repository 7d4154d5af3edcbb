package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/nikolayk812/shopcart/internal/apiclient"
	"github.com/nikolayk812/shopcart/internal/cartstore"
	"github.com/nikolayk812/shopcart/internal/domain"
	"github.com/nikolayk812/shopcart/internal/port"
	"github.com/nikolayk812/shopcart/internal/session"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var cartFlags struct {
	baseURL string
	token   string
	userID  string
	guestID string
	timeout time.Duration
}

var addFlags struct {
	quantity int
	name     string
	image    string
	color    string
	size     string
	price    string
	currency string
}

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Drive a cart on a running server",
	Long: `Drive a cart on a running shopcart server.

With --token the signed-in user's Shopify cart is used; with --guest-id the
guest cart is used. Line keys are Shopify line ids for the former and
variant|color|size for the latter, as printed by "cart show".`,
}

var cartShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the cart",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		if err := store.Hydrate(cmd.Context()); err != nil {
			return err
		}
		return printState(cmd.OutOrStdout(), store.State())
	},
}

var cartAddCmd = &cobra.Command{
	Use:   "add <variant-id>",
	Short: "Add a variant to the cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}

		price, err := domain.ParseMoney(addFlags.price, addFlags.currency)
		if err != nil {
			return fmt.Errorf("domain.ParseMoney: %w", err)
		}

		item := domain.CartItem{
			ID:    args[0],
			Name:  addFlags.name,
			Image: addFlags.image,
			Color: addFlags.color,
			Size:  addFlags.size,
			Price: price,
		}
		if err := store.AddItem(cmd.Context(), item, addFlags.quantity); err != nil {
			return err
		}
		return printState(cmd.OutOrStdout(), store.State())
	},
}

var cartUpdateCmd = &cobra.Command{
	Use:   "update <key> <quantity>",
	Short: "Set a line's quantity",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		quantity, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("quantity[%s] is not a number", args[1])
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		if err := store.UpdateQuantity(cmd.Context(), args[0], quantity); err != nil {
			return err
		}
		return printState(cmd.OutOrStdout(), store.State())
	},
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove <key>",
	Short: "Remove a line",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		if err := store.RemoveItem(cmd.Context(), args[0]); err != nil {
			return err
		}
		return printState(cmd.OutOrStdout(), store.State())
	},
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every line",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		if err := store.Clear(cmd.Context()); err != nil {
			return err
		}
		return printState(cmd.OutOrStdout(), store.State())
	},
}

var cartMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Move the guest cart into the signed-in user's cart",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if cartFlags.token == "" || cartFlags.guestID == "" {
			return fmt.Errorf("migrate needs both --token and --guest-id")
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		guest, err := apiclient.NewGuestCart(cartFlags.baseURL, apiclient.WithTimeout(cartFlags.timeout))
		if err != nil {
			return fmt.Errorf("apiclient.NewGuestCart: %w", err)
		}

		migrated, err := store.MigrateGuestCart(cmd.Context(), guest, cartFlags.guestID)
		if err != nil {
			return fmt.Errorf("migrated %d lines before failing: %w", migrated, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "migrated %d lines\n", migrated)
		return printState(cmd.OutOrStdout(), store.State())
	},
}

func init() {
	pf := cartCmd.PersistentFlags()
	pf.StringVar(&cartFlags.baseURL, "url", getenvDefault("SHOPCART_URL", "http://localhost:8080"), "Server base URL")
	pf.StringVar(&cartFlags.token, "token", os.Getenv("SHOPCART_TOKEN"), "Session token of a signed-in user")
	pf.StringVar(&cartFlags.userID, "user-id", "", "User id (default: the token's subject)")
	pf.StringVar(&cartFlags.guestID, "guest-id", os.Getenv("SHOPCART_GUEST_ID"), "Guest id")
	pf.DurationVar(&cartFlags.timeout, "timeout", 10*time.Second, "Request timeout")

	f := cartAddCmd.Flags()
	f.IntVarP(&addFlags.quantity, "quantity", "q", 1, "Quantity to add")
	f.StringVar(&addFlags.name, "name", "", "Display name (guest carts)")
	f.StringVar(&addFlags.image, "image", "", "Image URL (guest carts)")
	f.StringVar(&addFlags.color, "color", "", "Color option")
	f.StringVar(&addFlags.size, "size", "", "Size option")
	f.StringVar(&addFlags.price, "price", "0", "Unit price (guest carts)")
	f.StringVar(&addFlags.currency, "currency", "USD", "ISO currency code")

	cartCmd.AddCommand(cartShowCmd, cartAddCmd, cartUpdateCmd, cartRemoveCmd, cartClearCmd, cartMigrateCmd)
}

// openStore builds a store over the remote cart when a token is given and
// over the guest cart otherwise.
func openStore() (*cartstore.Store, error) {
	var (
		repo    port.CartRepository
		ownerID string
		err     error
	)

	switch {
	case cartFlags.token != "":
		ownerID = cartFlags.userID
		if ownerID == "" {
			if ownerID, err = session.Subject(cartFlags.token); err != nil {
				return nil, fmt.Errorf("session.Subject: %w", err)
			}
		}
		repo, err = apiclient.NewRemoteCart(cartFlags.baseURL, cartFlags.token, apiclient.WithTimeout(cartFlags.timeout))
		if err != nil {
			return nil, fmt.Errorf("apiclient.NewRemoteCart: %w", err)
		}
	case cartFlags.guestID != "":
		ownerID = cartFlags.guestID
		repo, err = apiclient.NewGuestCart(cartFlags.baseURL, apiclient.WithTimeout(cartFlags.timeout))
		if err != nil {
			return nil, fmt.Errorf("apiclient.NewGuestCart: %w", err)
		}
	default:
		return nil, fmt.Errorf("either --token or --guest-id is required")
	}

	logger.Debug("cart store", zap.String("owner", ownerID), zap.Bool("signed_in", cartFlags.token != ""))

	return cartstore.New(repo, ownerID,
		cartstore.WithLogger(logger),
		cartstore.WithNotifier(cartstore.LogNotifier{Logger: logger}),
	)
}

func printState(w io.Writer, s cartstore.State) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "KEY\tNAME\tQTY\tPRICE\tTOTAL")
	for _, item := range s.Items {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s %s\t%s\n",
			item.Key(), item.Name, item.Quantity,
			item.Price.Amount.StringFixed(2), item.Price.Currency,
			item.Price.Times(item.Quantity).Amount.StringFixed(2))
	}
	fmt.Fprintf(tw, "\t\t%d\t\t%s\n", s.ItemCount, s.Subtotal.StringFixed(2))
	if s.CheckoutURL != "" {
		fmt.Fprintf(tw, "checkout: %s\n", s.CheckoutURL)
	}

	return tw.Flush()
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
