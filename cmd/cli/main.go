package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ledger-cli",
		Short: "Ledger CLI tool",
		Long:  `A command line interface for interacting with the ledger API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the ledger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(accountsCmd(), postCmd(), reverseCmd(), reportsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Account operations",
	}

	var (
		code     string
		name     string
		currency string
		acctType string
	)

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodPost, "/api/v1/accounts", map[string]any{
				"code":     code,
				"name":     name,
				"currency": currency,
				"type":     acctType,
			}, http.StatusCreated)
		},
	}
	createCmd.Flags().StringVar(&code, "code", "", "Account code")
	createCmd.Flags().StringVar(&name, "name", "", "Account name")
	createCmd.Flags().StringVar(&currency, "currency", "KES", "Account currency")
	createCmd.Flags().StringVar(&acctType, "type", "", "Account type (ASSET, LIABILITY, EQUITY, INCOME, EXPENSE)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List active accounts",
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodGet, "/api/v1/accounts", nil, http.StatusOK)
		},
	}

	balanceCmd := &cobra.Command{
		Use:   "balance [account-id]",
		Short: "Show an account balance",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodGet, "/api/v1/accounts/"+args[0]+"/balance", nil, http.StatusOK)
		},
	}

	cmd.AddCommand(createCmd, listCmd, balanceCmd)

	return cmd
}

func postCmd() *cobra.Command {
	var (
		key         string
		description string
		debit       string
		credit      string
		amount      string
		currency    string
	)

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Post a two-leg transaction",
		Run: func(cmd *cobra.Command, args []string) {
			if key == "" {
				key = uuid.NewString()
				fmt.Printf("idempotency key: %s\n", key)
			}

			doRequest(http.MethodPost, "/api/v1/transactions", map[string]any{
				"idempotency_key": key,
				"description":     description,
				"entries": []map[string]any{
					{"account_id": debit, "currency": currency, "debit": amount, "credit": "0"},
					{"account_id": credit, "currency": currency, "debit": "0", "credit": amount},
				},
			}, http.StatusCreated)
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "Idempotency key (generated when empty)")
	cmd.Flags().StringVar(&description, "description", "", "Transaction description")
	cmd.Flags().StringVar(&debit, "debit", "", "Account to debit")
	cmd.Flags().StringVar(&credit, "credit", "", "Account to credit")
	cmd.Flags().StringVar(&amount, "amount", "", "Amount to move")
	cmd.Flags().StringVar(&currency, "currency", "KES", "Entry currency")

	return cmd
}

func reverseCmd() *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "reverse [transaction-id]",
		Short: "Reverse a posted transaction",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodPost, "/api/v1/transactions/"+args[0]+"/reverse", map[string]any{
				"reason": reason,
			}, http.StatusCreated)
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "Reason for the reversal")

	return cmd
}

func reportsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Reporting operations",
	}

	trialBalanceCmd := &cobra.Command{
		Use:   "trial-balance",
		Short: "Show the trial balance",
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodGet, "/api/v1/reports/trial-balance", nil, http.StatusOK)
		},
	}

	balanceSheetCmd := &cobra.Command{
		Use:   "balance-sheet",
		Short: "Show the balance sheet",
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodGet, "/api/v1/reports/balance-sheet", nil, http.StatusOK)
		},
	}

	loanAgingCmd := &cobra.Command{
		Use:   "loan-aging",
		Short: "Show the loan aging report",
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodGet, "/api/v1/reports/loan-aging", nil, http.StatusOK)
		},
	}

	cmd.AddCommand(trialBalanceCmd, balanceSheetCmd, loanAgingCmd)

	return cmd
}

func doRequest(method, path string, payload any, expected int) {
	client := &http.Client{Timeout: timeout}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			fmt.Printf("Failed to encode request: %v\n", err)
			os.Exit(1)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		fmt.Printf("Failed to build request: %v\n", err)
		os.Exit(1)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != expected {
		fmt.Printf("Request FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(data))
		os.Exit(1)
	}

	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	printJSON(decoded)
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("Failed to encode output: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(string(data))
}
