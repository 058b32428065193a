package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vuhk2k6/web-order-sub000/internal/clients/http/restaurant"
	checkoutdomain "github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/domain"
	fulfillmentdomain "github.com/vuhk2k6/web-order-sub000/internal/domains/fulfillment/domain"
	"github.com/vuhk2k6/web-order-sub000/internal/wizard"
)

type globalFlags struct {
	apiURL  string
	token   string
	timeout time.Duration
}

type placeFlags struct {
	customerID  string
	orderType   string
	items       []string
	points      int64
	promo       string
	payment     string
	gateway     string
	savedAddr   string
	address     fulfillmentdomain.Address
	table       int
	deliveryFee int64
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var g globalFlags
	root := &cobra.Command{
		Use:           "checkout",
		Short:         "Place and inspect restaurant orders from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.apiURL, "api", envOr("ORDER_API_URL", "http://localhost:8080"), "ordering API base URL")
	root.PersistentFlags().StringVar(&g.token, "token", os.Getenv("ORDER_API_TOKEN"), "session token of the signed-in customer")
	root.PersistentFlags().DurationVar(&g.timeout, "timeout", wizard.DefaultSubmitTimeout, "timeout for each API call")
	root.AddCommand(newPlaceCmd(&g), newOrderCmd(&g), newPayCmd(&g))
	return root
}

func newPlaceCmd(g *globalFlags) *cobra.Command {
	var f placeFlags
	cmd := &cobra.Command{
		Use:   "place",
		Short: "Run the checkout wizard with the given answers and submit the order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := restaurant.NewClient(g.apiURL, restaurant.WithToken(g.token))
			if err != nil {
				return err
			}
			return place(cmd.Context(), client, g, f)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.customerID, "customer", "", "customer id, loads loyalty points and saved addresses (requires --token)")
	fl.StringVar(&f.orderType, "type", "TAKEAWAY", "DELIVERY, DINE_IN or TAKEAWAY")
	fl.StringArrayVar(&f.items, "item", nil, "cart line as id:quantity[:size[:unitPrice]], repeatable")
	fl.Int64Var(&f.points, "points", 0, "loyalty points to redeem")
	fl.StringVar(&f.promo, "promo", "", "promotion code")
	fl.StringVar(&f.payment, "payment", "CASH", "CASH, BANK_TRANSFER or ONLINE")
	fl.StringVar(&f.gateway, "gateway", "momo", "online wallet name")
	fl.StringVar(&f.savedAddr, "saved-address", "", "id of a saved delivery address")
	fl.StringVar(&f.address.Address, "address", "", "delivery address line")
	fl.StringVar(&f.address.Ward, "ward", "", "delivery ward")
	fl.StringVar(&f.address.District, "district", "", "delivery district")
	fl.StringVar(&f.address.Street, "street", "", "delivery street")
	fl.StringVar(&f.address.Phone, "phone", "", "contact phone")
	fl.IntVar(&f.table, "table", 0, "table number for dine-in")
	fl.Int64Var(&f.deliveryFee, "delivery-fee", wizard.DefaultDeliveryFee, "delivery fee shown at review")
	_ = cmd.MarkFlagRequired("item")
	return cmd
}

func newOrderCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "order <orderId>",
		Short: "Show an order with its lines, payment and fulfillment detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := restaurant.NewClient(g.apiURL, restaurant.WithToken(g.token))
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), g.timeout)
			defer cancel()
			detail, err := client.GetOrder(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(detail)
		},
	}
}

func newPayCmd(g *globalFlags) *cobra.Command {
	var gateway string
	cmd := &cobra.Command{
		Use:   "pay <orderId>",
		Short: "Request a new payment link for an online order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := restaurant.NewClient(g.apiURL, restaurant.WithToken(g.token))
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), g.timeout)
			defer cancel()
			link, err := client.CreatePayment(ctx, gateway, args[0])
			if err != nil {
				return err
			}
			fmt.Println(link.PayURL)
			return nil
		},
	}
	cmd.Flags().StringVar(&gateway, "gateway", "momo", "online wallet name")
	return cmd
}

func place(ctx context.Context, client *restaurant.Client, g *globalFlags, f placeFlags) error {
	w := wizard.New(client,
		wizard.WithSubmitTimeout(g.timeout),
		wizard.WithGateway(f.gateway),
		wizard.WithDeliveryFee(f.deliveryFee),
	)
	for _, raw := range f.items {
		line, err := parseItem(raw)
		if err != nil {
			return err
		}
		if err := w.AddLine(line); err != nil {
			return fmt.Errorf("item %q: %w", raw, err)
		}
	}
	if g.token != "" && f.customerID != "" {
		session, err := loadSession(ctx, client, g.timeout, f.customerID)
		if err != nil {
			return err
		}
		w.SignIn(session)
	}

	if err := w.SetOrderType(f.orderType); err != nil {
		return err
	}
	if err := gate(w.Next()); err != nil {
		return err
	}
	w.SetPoints(f.points)
	if f.savedAddr != "" {
		w.SelectSavedAddress(f.savedAddr)
	} else {
		w.SetNewAddress(f.address)
	}
	w.SetTable(f.table)
	if err := gate(w.Next()); err != nil {
		return err
	}
	if f.promo != "" {
		w.EnterPromoCode(f.promo)
		if err := gate(w.ApplyPromotion(ctx)); err != nil {
			return err
		}
	}
	if err := gate(w.Next()); err != nil {
		return err
	}
	if err := w.SetPaymentMethod(f.payment); err != nil {
		return err
	}
	if err := gate(w.Next()); err != nil {
		return err
	}

	b := w.Breakdown()
	fmt.Printf("subtotal %d, points -%d, promotion -%d, delivery +%d, total %d\n",
		b.Subtotal, b.PointsDiscount, b.PromoDiscount, b.DeliveryFee, b.Total)
	out, res := w.Submit(ctx)
	if err := gate(res); err != nil {
		return err
	}
	fmt.Printf("order %s placed (%s), transaction %s, total %d\n", out.OrderID, out.Status, out.TransactionCode, out.Breakdown.Total)
	switch {
	case out.PayURL != "":
		fmt.Println("pay at:", out.PayURL)
	case out.PaymentPending():
		fmt.Println("payment link failed:", out.PaymentError)
		url, res := w.RetryPayment(ctx)
		if err := gate(res); err != nil {
			return fmt.Errorf("order %s kept, retry later with `checkout pay %s`: %w", out.OrderID, out.OrderID, err)
		}
		fmt.Println("pay at:", url)
	}
	return nil
}

func loadSession(ctx context.Context, client *restaurant.Client, timeout time.Duration, customerID string) (wizard.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	session := wizard.Session{CustomerID: customerID}
	member, err := client.Member(ctx, customerID)
	switch {
	case errors.Is(err, restaurant.ErrNotFound):
	case err != nil:
		return session, err
	default:
		session.PointBalance = member.Points
	}
	addresses, err := client.Addresses(ctx)
	if err != nil {
		return session, err
	}
	session.Addresses = addresses
	return session, nil
}

// parseItem reads id:quantity[:size[:unitPrice]].
func parseItem(raw string) (checkoutdomain.CartLine, error) {
	parts := strings.Split(raw, ":")
	if len(parts) < 2 || len(parts) > 4 {
		return checkoutdomain.CartLine{}, fmt.Errorf("item %q: want id:quantity[:size[:unitPrice]]", raw)
	}
	qty, err := strconv.Atoi(parts[1])
	if err != nil {
		return checkoutdomain.CartLine{}, fmt.Errorf("item %q: bad quantity", raw)
	}
	line := checkoutdomain.CartLine{ItemID: strings.TrimSpace(parts[0]), Quantity: qty}
	if len(parts) > 2 {
		line.Size = strings.TrimSpace(parts[2])
	}
	if len(parts) > 3 {
		price, err := strconv.ParseInt(parts[3], 10, 64)
		if err != nil {
			return checkoutdomain.CartLine{}, fmt.Errorf("item %q: bad unit price", raw)
		}
		line.UnitPrice = price
	}
	return line, nil
}

func gate(res wizard.GateResult) error {
	if res.OK {
		return nil
	}
	return fmt.Errorf("%s: %s", res.Code, res.Message)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
