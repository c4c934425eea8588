package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var (
	baseURL string
	timeout time.Duration
	token   string
)

// Swappable for tests.
var bcryptGenerate = bcrypt.GenerateFromPassword

func main() {
	rootCmd := &cobra.Command{
		Use:   "flowdash-cli",
		Short: "FlowDash CLI tool",
		Long:  `A command line interface for interacting with the FlowDash API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the FlowDash API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "Bearer token for authenticated requests")

	closingCmd := &cobra.Command{
		Use:   "closing",
		Short: "Daily closing operations",
	}
	closingCmd.AddCommand(closeDayCmd(), closingStatusCmd())

	rootCmd.AddCommand(closingCmd, verifyCmd(), hashPasswordCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func closeDayCmd() *cobra.Command {
	var (
		accountID string
		declared  string
		date      string
	)

	cmd := &cobra.Command{
		Use:   "close",
		Short: "Close the business day for an account",
		Run: func(cmd *cobra.Command, args []string) {
			payload := map[string]any{
				"account_id":       accountID,
				"declared_balance": declared,
			}
			if date != "" {
				payload["business_date"] = date + "T00:00:00Z"
			}

			status, body := doRequest(http.MethodPost, "/api/v1/closings/", payload)
			switch status {
			case http.StatusCreated:
				fmt.Println("Closing FINALIZED")
			case http.StatusConflict:
				fmt.Println("Closing NOT finalized")
			default:
				fmt.Printf("Unexpected status: %d\n", status)
			}
			printBody(body)
			if status != http.StatusCreated {
				os.Exit(1)
			}
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "Account ID to close")
	cmd.Flags().StringVar(&declared, "declared", "", "Declared (counted) balance")
	cmd.Flags().StringVar(&date, "date", "", "Business date (YYYY-MM-DD, defaults to today)")
	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("declared")

	return cmd
}

func closingStatusCmd() *cobra.Command {
	var (
		accountID string
		date      string
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the closing status of an account",
		Run: func(cmd *cobra.Command, args []string) {
			path := "/api/v1/accounts/" + accountID + "/closings/status"
			if date != "" {
				path += "?date=" + date
			}

			status, body := doRequest(http.MethodGet, path, nil)
			if status != http.StatusOK {
				fmt.Printf("Status check failed (Status: %d)\n", status)
				printBody(body)
				os.Exit(1)
			}
			printBody(body)
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "Account ID")
	cmd.Flags().StringVar(&date, "date", "", "Business date (YYYY-MM-DD, defaults to today)")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}

func verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Verify recorded balances against the ledger",
		Run: func(cmd *cobra.Command, args []string) {
			status, body := doRequest(http.MethodGet, "/api/v1/verification", nil)
			if status != http.StatusOK {
				fmt.Printf("Verification FAILED (Status: %d)\n", status)
				printBody(body)
				os.Exit(1)
			}

			var result struct {
				Results []map[string]any `json:"results"`
				Total   int64            `json:"total"`
			}
			if err := json.Unmarshal(body, &result); err != nil {
				fmt.Printf("Failed to parse response: %v\n", err)
				os.Exit(1)
			}

			inconsistent := 0
			for _, r := range result.Results {
				if ok, _ := r["consistent"].(bool); !ok {
					inconsistent++
					fmt.Printf("INCONSISTENT account %v: recorded=%v computed=%v\n",
						r["account_id"], r["recorded_balance"], r["computed_balance"])
				}
			}

			if inconsistent > 0 {
				fmt.Printf("Verification FAILED: %d of %d accounts inconsistent\n", inconsistent, result.Total)
				os.Exit(1)
			}
			fmt.Printf("Verification PASSED: %d accounts consistent\n", result.Total)
		},
	}
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Hash a password for manual user provisioning",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := bcryptGenerate([]byte(args[0]), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			fmt.Println(string(hash))
			return nil
		},
	}
}

func doRequest(method, path string, payload any) (int, []byte) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			fmt.Printf("Failed to encode request: %v\n", err)
			os.Exit(1)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, baseURL+path, reqBody)
	if err != nil {
		fmt.Printf("Failed to build request: %v\n", err)
		os.Exit(1)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, body
}

func printBody(body []byte) {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		fmt.Println(truncate(string(body), 500))
		return
	}
	printJSON(v)
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("Failed to render response: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
