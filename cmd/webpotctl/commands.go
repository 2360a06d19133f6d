package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/polkiloo/webpot/internal/client"
	"github.com/polkiloo/webpot/internal/domain/model"
)

const dateLayout = "2006-01-02"

func cmdLogin(ctx context.Context, c *cli, args []string) error {
	fs := c.newFlags("login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	res, err := c.app.Auth.Login(ctx, c.ask(*email, "Email"), c.ask(*password, "Password"))
	if err != nil {
		return err
	}
	return c.report(res)
}

func cmdVerifyOTP(ctx context.Context, c *cli, args []string) error {
	fs := c.newFlags("verify-otp")
	email := fs.String("email", "", "account email")
	code := fs.String("code", "", "code from the email or SMS")
	if err := fs.Parse(args); err != nil {
		return err
	}
	res, err := c.app.Auth.VerifyLoginOTP(ctx, c.ask(*email, "Email"), c.ask(*code, "Code"))
	if err != nil {
		return err
	}
	return c.report(res)
}

func cmdRegister(ctx context.Context, c *cli, args []string) error {
	fs := c.newFlags("register")
	form := client.RegisterForm{}
	fs.StringVar(&form.Name, "name", "", "full name")
	fs.StringVar(&form.Email, "email", "", "email")
	fs.StringVar(&form.Phone, "phone", "", "phone number")
	fs.StringVar(&form.Password, "password", "", "password")
	fs.StringVar(&form.ConfirmPassword, "confirm", "", "password again")
	if err := fs.Parse(args); err != nil {
		return err
	}
	form.Name = c.ask(form.Name, "Name")
	form.Email = c.ask(form.Email, "Email")
	form.Password = c.ask(form.Password, "Password")
	form.ConfirmPassword = c.ask(form.ConfirmPassword, "Confirm password")

	res, err := c.app.Auth.Register(ctx, form)
	if err != nil {
		return err
	}
	return c.report(res)
}

func cmdReset(ctx context.Context, c *cli, args []string) error {
	fs := c.newFlags("reset")
	email := fs.String("email", "", "account email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	res, err := c.app.Auth.RequestPasswordReset(ctx, c.ask(*email, "Email"))
	if err != nil {
		return err
	}
	return c.report(res)
}

func cmdResetConfirm(ctx context.Context, c *cli, args []string) error {
	fs := c.newFlags("reset-confirm")
	email := fs.String("email", "", "account email")
	code := fs.String("code", "", "reset code")
	password := fs.String("password", "", "new password")
	confirm := fs.String("confirm", "", "new password again")
	if err := fs.Parse(args); err != nil {
		return err
	}
	res, err := c.app.Auth.ConfirmPasswordReset(ctx,
		c.ask(*email, "Email"),
		c.ask(*code, "Code"),
		c.ask(*password, "New password"),
		c.ask(*confirm, "Confirm password"),
	)
	if err != nil {
		return err
	}
	return c.report(res)
}

func cmdLogout(_ context.Context, c *cli, _ []string) error {
	if err := c.app.Auth.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "signed out")
	return nil
}

func cmdWhoami(_ context.Context, c *cli, _ []string) error {
	sess := c.app.Sessions.Get()
	if !sess.LoggedIn {
		fmt.Fprintln(c.out, "not signed in")
	} else {
		fmt.Fprintf(c.out, "%s (%s) %s\n", sess.Name, sess.Initials, sess.Email)
		fmt.Fprintf(c.out, "last activity %s\n", sess.LastActivity.Local().Format(time.RFC1123))
	}
	if c.app.Admin.LoggedIn() {
		fmt.Fprintln(c.out, "console: signed in")
	}
	return nil
}

func cmdQuote(_ context.Context, c *cli, args []string) error {
	fs := c.newFlags("quote")
	tier := fs.String("tier", "", "single tier to price")
	if err := fs.Parse(args); err != nil {
		return err
	}

	quotes := c.app.Orders.Tiers()
	if *tier != "" {
		q, err := c.app.Orders.Quote(*tier)
		if err != nil {
			return err
		}
		quotes = []client.Quote{q}
	}

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIER\tPRICE\tADVANCE")
	for _, q := range quotes {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", q.Tier, q.Price, q.Advance)
	}
	return tw.Flush()
}

func cmdOrder(ctx context.Context, c *cli, args []string) error {
	fs := c.newFlags("order")
	draft := &client.Draft{}
	fs.StringVar(&draft.Tier, "tier", "", "Starter, Basic or Premium")
	fs.StringVar(&draft.Name, "name", "", "your name")
	fs.StringVar(&draft.Email, "email", "", "contact email")
	fs.StringVar(&draft.Phone, "phone", "", "contact phone")
	fs.StringVar(&draft.Details, "details", "", "project details")
	utr := fs.String("utr", "", "bank transaction reference")
	later := fs.Bool("pay-later", false, "record the order without paying")
	qrFile := fs.String("qr", "", "write the payment code as PNG to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if sess := c.app.Sessions.Get(); sess.LoggedIn {
		if draft.Name == "" {
			draft.Name = sess.Name
		}
		if draft.Email == "" {
			draft.Email = sess.Email
		}
	}

	checkout, err := c.app.Orders.Submit(draft)
	if err != nil {
		return err
	}
	return c.settle(ctx, checkout, *utr, *later, *qrFile)
}

func cmdDashboard(ctx context.Context, c *cli, _ []string) error {
	view, err := c.app.Dashboard.Load(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "%s (%s)\n", view.Name, view.Email)
	if view.HasLastSeen {
		fmt.Fprintf(c.out, "last seen %s\n", view.LastSeen.Local().Format(time.RFC1123))
	}
	fmt.Fprintf(c.out, "orders %d  total %s  due %s\n\n",
		view.Summary.Count, view.Summary.TotalSpent.StringFixed(0), view.Summary.TotalDue.StringFixed(0))

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tORDER\tSERVICE\tAMOUNT\tDUE\tSTATUS\t")
	for _, r := range view.Rows {
		action := ""
		if r.CanPay {
			action = "pay -order " + r.OrderID
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Date.Local().Format(dateLayout), r.OrderID, r.Service,
			r.Amount.StringFixed(0), r.Due.StringFixed(0), r.Status, action)
	}
	return tw.Flush()
}

func cmdPay(ctx context.Context, c *cli, args []string) error {
	fs := c.newFlags("pay")
	orderID := fs.String("order", "", "order reference")
	utr := fs.String("utr", "", "bank transaction reference")
	qrFile := fs.String("qr", "", "write the payment code as PNG to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *orderID == "" {
		fmt.Fprintln(c.out, "pay: -order is required")
		return errUsage
	}

	if _, err := c.app.Dashboard.Load(ctx); err != nil {
		return err
	}
	checkout, err := c.app.Dashboard.PayNow(*orderID)
	if err != nil {
		return err
	}
	return c.settle(ctx, checkout, *utr, false, *qrFile)
}

func cmdReview(ctx context.Context, c *cli, args []string) error {
	fs := c.newFlags("review")
	form := client.ReviewForm{}
	fs.StringVar(&form.Service, "service", "", "service reviewed")
	fs.IntVar(&form.Rating, "rating", 0, "rating from 1 to 5")
	fs.StringVar(&form.Comment, "comment", "", "your comment")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.app.Dashboard.SubmitReview(ctx, form); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "thank you, your review will appear after moderation")
	return nil
}

func cmdReviews(ctx context.Context, c *cli, _ []string) error {
	reviews, err := c.app.Reviews.Public(ctx)
	if err != nil {
		return err
	}
	if len(reviews) == 0 {
		fmt.Fprintln(c.out, "no reviews yet")
		return nil
	}
	for _, r := range reviews {
		fmt.Fprintf(c.out, "%s  %s  %s\n  %q\n", r.Stars(), r.Name, r.Service, r.Comment)
	}
	return nil
}

func cmdContact(ctx context.Context, c *cli, args []string) error {
	fs := c.newFlags("contact")
	form := client.ContactForm{}
	fs.StringVar(&form.Name, "name", "", "your name")
	fs.StringVar(&form.Email, "email", "", "reply email")
	fs.StringVar(&form.Phone, "phone", "", "phone number")
	fs.StringVar(&form.Message, "message", "", "your message")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if sess := c.app.Sessions.Get(); sess.LoggedIn {
		if form.Name == "" {
			form.Name = sess.Name
		}
		if form.Email == "" {
			form.Email = sess.Email
		}
	}
	form.Message = c.ask(form.Message, "Message")

	msg, err := c.app.Contact.Submit(ctx, form)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, msg)
	return nil
}

func cmdAdminLogin(ctx context.Context, c *cli, args []string) error {
	fs := c.newFlags("admin-login")
	email := fs.String("email", "", "console email")
	password := fs.String("password", "", "console password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.app.Admin.Login(ctx, c.ask(*email, "Email"), c.ask(*password, "Password")); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "console: signed in")
	return nil
}

func cmdAdminOrders(ctx context.Context, c *cli, _ []string) error {
	orders, err := c.app.Admin.ListOrders(ctx)
	if err != nil {
		return err
	}
	stats := c.app.Admin.Stats(orders)
	fmt.Fprintf(c.out, "total %d  active %d  pending %d  revenue %s\n\n",
		stats.Total, stats.Active, stats.Pending, stats.Revenue.StringFixed(0))

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tORDER\tCUSTOMER\tSERVICE\tPAID\tDUE\tSTATUS\tTXN\t")
	for _, o := range orders {
		action := ""
		if o.CanApprove {
			action = "approve -order " + o.OrderID
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%s\t%s\t%s\n",
			o.Date.Local().Format(dateLayout), o.OrderID, o.Email, o.Service,
			o.PaidAmount, o.DueAmount, o.Status, o.TransactionID, action)
	}
	return tw.Flush()
}

func cmdAdminUsers(ctx context.Context, c *cli, _ []string) error {
	users, err := c.app.Admin.ListUsers(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tEMAIL\tROLE\tSTATUS\tLAST LOGIN\t")
	for _, u := range users {
		last := "-"
		if u.LastLogin != nil {
			last = u.LastLogin.Local().Format(dateLayout)
		}
		action := ""
		if u.CanBan {
			action = "ban -email " + u.Email
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", u.Name, u.Email, u.Role, u.Label, last, action)
	}
	return tw.Flush()
}

func cmdAdminReviews(ctx context.Context, c *cli, _ []string) error {
	reviews, err := c.app.Admin.ListReviews(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSERVICE\tRATING\tCOMMENT\tSTATE\t")
	for _, r := range reviews {
		state := "published"
		if !r.Approved {
			state = fmt.Sprintf("approve -review %d", r.ID)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\n", r.ID, r.Name, r.Service, r.Rating, r.Comment, state)
	}
	return tw.Flush()
}

func cmdApprove(ctx context.Context, c *cli, args []string) error {
	fs := c.newFlags("approve")
	orderID := fs.String("order", "", "order to activate")
	reviewID := fs.Int64("review", 0, "review to publish")
	status := fs.String("status", "", "set this order status instead of Active")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch {
	case *orderID != "" && *status != "":
		if err := c.app.Admin.UpdateOrderStatus(ctx, *orderID, model.OrderStatus(*status)); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "%s: %s\n", *orderID, *status)
	case *orderID != "":
		if err := c.app.Admin.Approve(ctx, *orderID); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "%s: %s\n", *orderID, model.OrderStatusActive)
	case *reviewID != 0:
		if err := c.app.Admin.ApproveReview(ctx, *reviewID); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "review %d published\n", *reviewID)
	default:
		fmt.Fprintln(c.out, "approve: -order or -review is required")
		return errUsage
	}
	return nil
}

func cmdBan(ctx context.Context, c *cli, args []string) error {
	fs := c.newFlags("ban")
	email := fs.String("email", "", "user to block")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.app.Admin.BanUser(ctx, *email); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s: Banned\n", *email)
	return nil
}

// report prints the outcome of an auth step.
func (c *cli) report(res client.AuthResult) error {
	switch res.Outcome {
	case client.OutcomeSignedIn:
		fmt.Fprintf(c.out, "welcome, %s\n", res.Session.Name)
	case client.OutcomeOTPRequired:
		fmt.Fprintf(c.out, "a code was sent; run: webpotctl verify-otp -email %s -code <code>\n", res.Email)
	case client.OutcomeSwitchToRegister:
		fmt.Fprintf(c.out, "no account for %s; run: webpotctl register -email %s\n", res.Email, res.Email)
	case client.OutcomeBanned:
		return errors.New("this account has been blocked")
	case client.OutcomeCodeSent:
		fmt.Fprintf(c.out, "a reset code was sent to %s\n", res.Email)
	case client.OutcomePasswordChanged:
		fmt.Fprintln(c.out, "password changed, you can sign in now")
	}
	return nil
}

// settle shows the payment code and waits for a reference, pay later or
// regeneration requests until the payment is recorded.
func (c *cli) settle(ctx context.Context, checkout *client.Checkout, utr string, later bool, qrFile string) error {
	fmt.Fprintf(c.out, "amount due now: %d INR\n", checkout.Amount())
	if err := c.showCode(checkout, qrFile); err != nil {
		return err
	}

	switch {
	case later:
		return c.finish(checkout.PayLater(ctx))
	case utr != "":
		return c.finish(checkout.Confirm(ctx, utr))
	}

	checkout.OnChange(func(s client.State) {
		if s == client.StateExpired {
			fmt.Fprintln(c.out, "\npayment code expired; type 'regen' for a new one")
		}
	})

	for {
		fmt.Fprintf(c.out, "[%s left] transaction reference, 'later' or 'regen': ", checkout.Remaining().Round(time.Second))
		if !c.in.Scan() {
			return errors.New("payment abandoned")
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		var (
			ref string
			err error
		)
		switch line := strings.TrimSpace(c.in.Text()); strings.ToLower(line) {
		case "":
			continue
		case "later":
			ref, err = checkout.PayLater(ctx)
		case "regen":
			if err := checkout.Regenerate(); err != nil {
				fmt.Fprintln(c.out, describe(err))
				if errors.Is(err, client.ErrRegenerationLimit) {
					return err
				}
				continue
			}
			if err := c.showCode(checkout, qrFile); err != nil {
				return err
			}
			continue
		default:
			ref, err = checkout.Confirm(ctx, line)
		}

		if err == nil {
			return c.finish(ref, nil)
		}
		var verr *client.ValidationError
		if client.IsRetryable(err) || errors.As(err, &verr) || errors.Is(err, client.ErrInvalidState) || errors.Is(err, client.ErrPayLaterUnavailable) {
			fmt.Fprintln(c.out, describe(err))
			continue
		}
		return err
	}
}

func (c *cli) showCode(checkout *client.Checkout, qrFile string) error {
	if qrFile != "" {
		png, err := checkout.QRPNG(0)
		if err != nil {
			return err
		}
		if err := os.WriteFile(qrFile, png, 0o600); err != nil {
			return fmt.Errorf("write qr: %w", err)
		}
		fmt.Fprintf(c.out, "payment code written to %s\n", qrFile)
	} else {
		text, err := checkout.QRText()
		if err != nil {
			return err
		}
		fmt.Fprint(c.out, text)
	}
	fmt.Fprintln(c.out, checkout.Payload())
	return nil
}

func (c *cli) finish(ref string, err error) error {
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "recorded as %s\n", ref)
	return nil
}
