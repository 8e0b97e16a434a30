package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/kevin07696/express-gateway/internal/domain/models"
	"github.com/kevin07696/express-gateway/internal/domain/ports"
)

// exchangeHistory is implemented by clients that keep request/response bodies
type exchangeHistory interface {
	Requests() []string
	Responses() []string
}

type resultView struct {
	Gateway         string         `json:"gateway"`
	Outcome         string         `json:"outcome"`
	ReferenceNumber string         `json:"reference_number,omitempty"`
	TransactionID   string         `json:"transaction_id,omitempty"`
	ResponseCode    string         `json:"response_code,omitempty"`
	Message         string         `json:"message,omitempty"`
	DeclineReason   string         `json:"decline_reason,omitempty"`
	PaymentStatus   string         `json:"payment_status,omitempty"`
	HTTPCode        int            `json:"http_code,omitempty"`
	Data            map[string]any `json:"data,omitempty"`
	Requests        []string       `json:"requests,omitempty"`
	Responses       []string       `json:"responses,omitempty"`
}

func printResult(w io.Writer, opts *globalOptions, gw ports.Gateway, reference string, res *ports.Result) error {
	view := resultView{
		Gateway:         gw.Name(),
		Outcome:         string(res.Outcome),
		ReferenceNumber: reference,
		TransactionID:   res.TransactionID,
		ResponseCode:    res.ResponseCode,
		Message:         res.Message,
		HTTPCode:        res.HTTPCode,
		Data:            res.Data,
	}
	if res.DeclineReason != nil {
		view.DeclineReason = string(*res.DeclineReason)
	}
	if res.PaymentStatus != nil {
		view.PaymentStatus = string(*res.PaymentStatus)
	}
	if h, ok := gw.(exchangeHistory); ok && opts.history {
		view.Requests = h.Requests()
		view.Responses = h.Responses()
	}

	if opts.json {
		return writeJSON(w, view)
	}

	rows := [][2]string{
		{"Gateway", view.Gateway},
		{"Outcome", view.Outcome},
		{"Reference", view.ReferenceNumber},
		{"Transaction ID", view.TransactionID},
		{"Response code", view.ResponseCode},
		{"Message", view.Message},
		{"Decline reason", view.DeclineReason},
		{"Payment status", view.PaymentStatus},
	}
	if view.HTTPCode != 0 {
		rows = append(rows, [2]string{"HTTP code", fmt.Sprint(view.HTTPCode)})
	}
	if err := writeRows(w, rows); err != nil {
		return err
	}

	if len(view.Data) > 0 {
		fmt.Fprintln(w, "Data:")
		keys := make([]string, 0, len(view.Data))
		for k := range view.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "  %-24s %v\n", k, view.Data[k])
		}
	}

	for i, body := range view.Requests {
		fmt.Fprintf(w, "\nRequest %d:\n%s\n", i+1, body)
	}
	for i, body := range view.Responses {
		fmt.Fprintf(w, "\nResponse %d:\n%s\n", i+1, body)
	}
	return nil
}

type accountView struct {
	PaymentAccountID       string             `json:"payment_account_id"`
	ReferenceNumber        string             `json:"reference_number,omitempty"`
	PaymentType            string             `json:"payment_type"`
	AccountType            string             `json:"account_type,omitempty"`
	ExpirationMonth        int                `json:"expiration_month,omitempty"`
	ExpirationYear         int                `json:"expiration_year,omitempty"`
	TruncatedAccountNumber string             `json:"truncated_account_number,omitempty"`
	Billing                models.BillingInfo `json:"billing"`
}

func printAccount(w io.Writer, opts *globalOptions, account *models.PaymentAccount) error {
	view := accountView{
		PaymentAccountID:       account.PaymentAccountID,
		ReferenceNumber:        account.ReferenceNumber,
		PaymentType:            string(account.PaymentType),
		AccountType:            string(account.AccountType),
		ExpirationMonth:        account.ExpirationMonth,
		ExpirationYear:         account.ExpirationYear,
		TruncatedAccountNumber: account.TruncatedAccountNumber,
		Billing:                account.Billing,
	}
	if opts.json {
		return writeJSON(w, view)
	}

	rows := [][2]string{
		{"Payment account", view.PaymentAccountID},
		{"Reference", view.ReferenceNumber},
		{"Payment type", view.PaymentType},
		{"Account type", view.AccountType},
		{"Account number", view.TruncatedAccountNumber},
		{"Billing name", view.Billing.Name},
		{"Billing zip", view.Billing.PostalCode},
	}
	if view.ExpirationMonth > 0 {
		rows = append(rows, [2]string{"Expiration", fmt.Sprintf("%02d/%d", view.ExpirationMonth, view.ExpirationYear)})
	}
	return writeRows(w, rows)
}

func printSetup(w io.Writer, opts *globalOptions, setup *models.TransactionSetup) error {
	if opts.json {
		return writeJSON(w, map[string]string{"id": setup.ID, "url": setup.URL})
	}
	return writeRows(w, [][2]string{
		{"Setup ID", setup.ID},
		{"URL", setup.URL},
	})
}

func printCredentials(w io.Writer, opts *globalOptions, creds models.Credentials) error {
	masked := creds
	masked.AccountToken = maskSecret(creds.AccountToken)
	if creds.TokenService != nil {
		ts := *creds.TokenService
		ts.APIKey = maskSecret(ts.APIKey)
		masked.TokenService = &ts
	}
	if opts.json {
		return writeJSON(w, masked)
	}

	rows := [][2]string{
		{"Account ID", masked.AccountID},
		{"Account token", masked.AccountToken},
		{"Acceptor ID", masked.AcceptorID},
		{"Terminal ID", masked.TerminalID},
		{"Tokenized", fmt.Sprint(masked.Tokenized())},
	}
	if ts := masked.TokenService; ts != nil {
		rows = append(rows,
			[2]string{"Proxy URL", ts.URL},
			[2]string{"Proxy ID", ts.ID},
			[2]string{"Proxy API key", ts.APIKey},
		)
	}
	return writeRows(w, rows)
}

// maskSecret keeps the last four characters
func maskSecret(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
}

// writeRows prints label/value pairs, skipping empty values
func writeRows(w io.Writer, rows [][2]string) error {
	for _, r := range rows {
		if r[1] == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, "%-16s %s\n", r[0]+":", r[1]); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
