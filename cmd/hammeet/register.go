package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/hamvadakara/hammeet/internal/payment"
	"github.com/hamvadakara/hammeet/internal/registration"
	"github.com/hamvadakara/hammeet/internal/wizard"
	"github.com/hamvadakara/hammeet/pkg/i18n"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F59E0B"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(16)
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#F59E0B")).
			Padding(1, 2)
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
)

// prompter is the interactive side of the terminal flow.
type prompter interface {
	// Details edits f in place. validate returns the check for a field.
	Details(ctx context.Context, f *registration.Form, validate func(field string) func(string) error) error
	// Confirm asks a yes/no question.
	Confirm(ctx context.Context, title, description string) (bool, error)
	// Wait shows progress while fn runs.
	Wait(ctx context.Context, title string, fn func(context.Context) error) error
}

func newRegisterCmd(a *app) *cobra.Command {
	var accessible bool

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register in the terminal with the demo payment gateway",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr := i18n.Default()
			if lang := os.Getenv("LANG"); lang != "" {
				tr = i18n.MustBundle().Translator(strings.SplitN(lang, ".", 2)[0])
			}
			flow := &registerFlow{
				prompt: huhPrompter{tr: tr, accessible: accessible},
				runner: wizard.Runner{Gateway: a.cfg.Payment.Gateway(), Policy: a.cfg.Payment.Policy()},
				tr:     tr,
				out:    cmd.OutOrStdout(),
				title:  a.cfg.Details().Title,
			}
			c := wizard.New(
				wizard.WithFee(a.cfg.Details().Fee),
				wizard.WithValidator(func(f registration.Form) registration.ValidationErrors {
					return registration.ValidateWith(f, tr)
				}),
			)
			err := flow.run(cmd.Context(), c)
			if errors.Is(err, huh.ErrUserAborted) {
				fmt.Fprintln(cmd.OutOrStdout(), "registration cancelled")
				return nil
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&accessible, "accessible", os.Getenv("ACCESSIBLE") != "", "plain prompts for screen readers")

	return cmd
}

// registerFlow drives a wizard controller from the terminal.
type registerFlow struct {
	prompt prompter
	runner wizard.Runner
	tr     *i18n.Translator
	out    io.Writer
	title  string
}

func (r *registerFlow) run(ctx context.Context, c *wizard.Controller) error {
	fmt.Fprintln(r.out, titleStyle.Render(r.title))

	for {
		switch c.State() {
		case wizard.StateForm:
			if err := r.fill(ctx, c); err != nil {
				return err
			}

		case wizard.StatePayment:
			if err := r.pay(ctx, c); err != nil {
				return err
			}

		case wizard.StateSuccess:
			fmt.Fprintln(r.out, renderSummary(r.tr, c.View()))
			return nil
		}
	}
}

func (r *registerFlow) fill(ctx context.Context, c *wizard.Controller) error {
	form := c.View().Form
	validate := func(field string) func(string) error {
		return registration.Rules.Func(field, r.translate)
	}
	if err := r.prompt.Details(ctx, &form, validate); err != nil {
		return err
	}

	for field, value := range form.Values() {
		if err := c.SetField(field, value); err != nil {
			return err
		}
	}
	errs, err := c.Submit()
	if err != nil {
		return err
	}
	for _, field := range registration.Rules.Fields() {
		if errs.Has(field) {
			fmt.Fprintln(r.out, warnStyle.Render(errs[field]))
		}
	}
	return nil
}

func (r *registerFlow) pay(ctx context.Context, c *wizard.Controller) error {
	view := c.View()
	if view.Failure != "" {
		fmt.Fprintln(r.out, warnStyle.Render(r.tr.T("payment.failed", map[string]any{"Reason": view.Failure})))
	}

	fee := payment.FormatINR(view.Fee)
	ok, err := r.prompt.Confirm(ctx, r.tr.T("payment.pay")+" "+fee, r.tr.T("payment.info"))
	if err != nil {
		return err
	}
	if !ok {
		return c.Back()
	}

	results := make(chan wizard.Result, 1)
	if _, err := r.runner.Start(ctx, c, func(res wizard.Result) { results <- res }); err != nil {
		return err
	}

	var res wizard.Result
	err = r.prompt.Wait(ctx, r.tr.T("payment.processing"), func(ctx context.Context) error {
		select {
		case res = <-results:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	if err != nil {
		c.Cancel()
		return err
	}
	c.Complete(res)
	return nil
}

func (r *registerFlow) translate(id string) string {
	return r.tr.T(id)
}

func renderSummary(tr *i18n.Translator, v wizard.View) string {
	form := v.Form.Normalized()
	row := func(label, value string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), value)
	}

	lines := []string{
		titleStyle.Render(tr.T("payment.success")),
		"",
		row(tr.T("form.name"), form.Name),
		row(tr.T("form.call_sign"), form.CallSign),
		row(tr.T("form.mobile"), form.Mobile),
		row(tr.T("form.address"), form.Address),
		row(tr.T("payment.fee"), payment.FormatINR(v.Fee)),
	}
	if v.Receipt != nil {
		lines = append(lines, "", tr.T("payment.transaction", map[string]any{"ID": v.Receipt.TransactionID}))
	}
	lines = append(lines, tr.T("payment.email_note"))

	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// huhPrompter asks through huh forms.
type huhPrompter struct {
	tr         *i18n.Translator
	accessible bool
}

func (p huhPrompter) Details(ctx context.Context, f *registration.Form, validate func(string) func(string) error) error {
	tr := p.tr
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(tr.T("form.name")).
				Placeholder("Your full name").
				Value(&f.Name).
				Validate(validate(registration.FieldName)),
			huh.NewInput().
				Title(tr.T("form.call_sign")).
				Placeholder("e.g. VU2ABC").
				Value(&f.CallSign).
				Validate(validate(registration.FieldCallSign)),
			huh.NewInput().
				Title(tr.T("form.mobile")).
				Description("10 digits").
				Placeholder("9876543210").
				CharLimit(10).
				Value(&f.Mobile).
				Validate(validate(registration.FieldMobile)),
			huh.NewText().
				Title(tr.T("form.address")).
				Lines(3).
				Value(&f.Address).
				Validate(validate(registration.FieldAddress)),
		).Title(tr.T("form.heading")),
	).WithAccessible(p.accessible).RunWithContext(ctx)
}

func (p huhPrompter) Confirm(ctx context.Context, title, description string) (bool, error) {
	ok := true
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Value(&ok),
		),
	).WithAccessible(p.accessible).RunWithContext(ctx)
	return ok, err
}

func (p huhPrompter) Wait(ctx context.Context, title string, fn func(context.Context) error) error {
	if p.accessible {
		fmt.Println(title)
		return fn(ctx)
	}
	return spinner.New().
		Title(" " + title).
		Context(ctx).
		ActionWithErr(fn).
		Run()
}
