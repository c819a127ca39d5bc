package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hazim/reckon/internal/batch"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "reckon-cli",
		Short: "Reckon CLI tool",
		Long:  `A command line interface for interacting with the Reckon reconciliation API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the Reckon API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(batchCmd())
	rootCmd.AddCommand(adjustmentCmd())
	rootCmd.AddCommand(balancesCmd())
	rootCmd.AddCommand(reconcileCmd())
	rootCmd.AddCommand(parseCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func batchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Settlement batch operations",
	}

	var (
		categoryID int64
		kind       string
		file       string
	)

	submitCmd := &cobra.Command{
		Use:   "submit [text]",
		Short: "Submit a settlement batch",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := batchText(args, file)
			if err != nil {
				return err
			}

			body := map[string]any{"text": text, "category_id": categoryID, "kind": kind}

			return postJSON("/api/v1/batches/", body)
		},
	}
	submitCmd.Flags().Int64Var(&categoryID, "category", 0, "Category ID")
	submitCmd.Flags().StringVar(&kind, "kind", "primary", "Account kind (primary or secondary)")
	submitCmd.Flags().StringVar(&file, "file", "", "Read batch text from file (- for stdin)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List settlement batches",
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON("/api/v1/batches/")
		},
	}

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON("/api/v1/batches/" + args[0])
		},
	}

	entriesCmd := &cobra.Command{
		Use:   "entries <id>",
		Short: "List a batch's derived entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON("/api/v1/batches/" + args[0] + "/entries")
		},
	}

	updateCmd := &cobra.Command{
		Use:   "update <id> [text]",
		Short: "Replace a batch's text and regenerate entries",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := batchText(args[1:], file)
			if err != nil {
				return err
			}

			return putJSON("/api/v1/batches/"+args[0], map[string]any{"text": text})
		},
	}
	updateCmd.Flags().StringVar(&file, "file", "", "Read batch text from file (- for stdin)")

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a batch and reverse its entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return deleteRequest("/api/v1/batches/" + args[0])
		},
	}

	cmd.AddCommand(submitCmd, listCmd, getCmd, entriesCmd, updateCmd, deleteCmd)

	return cmd
}

func adjustmentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "adjustment",
		Short: "Adjustment operations",
	}

	var (
		ownerID    string
		categoryID int64
		kind       string
	)

	createCmd := &cobra.Command{
		Use:   "create <amount>",
		Short: "Record a pending adjustment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := strconv.ParseFloat(args[0], 64); err != nil {
				return fmt.Errorf("invalid amount %q", args[0])
			}

			body := map[string]any{
				"owner_id":    ownerID,
				"category_id": categoryID,
				"kind":        kind,
				"amount":      json.RawMessage(args[0]),
			}

			return postJSON("/api/v1/adjustments/", body)
		},
	}
	createCmd.Flags().StringVar(&ownerID, "owner", "", "Owner ID")
	createCmd.Flags().Int64Var(&categoryID, "category", 0, "Category ID")
	createCmd.Flags().StringVar(&kind, "kind", "primary", "Account kind (primary or secondary)")

	approveCmd := &cobra.Command{
		Use:   "approve <id>",
		Short: "Approve a pending adjustment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return postJSON("/api/v1/adjustments/"+args[0]+"/approve", nil)
		},
	}

	rejectCmd := &cobra.Command{
		Use:   "reject <id>",
		Short: "Reject a pending adjustment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return postJSON("/api/v1/adjustments/"+args[0]+"/reject", nil)
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List adjustments",
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON("/api/v1/adjustments/")
		},
	}

	cmd.AddCommand(createCmd, approveCmd, rejectCmd, listCmd)

	return cmd
}

func balancesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balances",
		Short: "List all balances",
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON("/api/v1/balances/")
		},
	}
}

func reconcileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Reconciliation operations",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run a full reset-and-replay rebuild",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postJSON("/api/v1/reconciliation/run", nil)
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether a rebuild is in flight",
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON("/api/v1/reconciliation/status")
		},
	}

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent reconciliation runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON("/api/v1/reconciliation/runs")
		},
	}

	cmd.AddCommand(runCmd, statusCmd, runsCmd)

	return cmd
}

// parseCmd runs the batch parser locally without touching the API, so an
// operator can dry-run a settlement text before submitting it.
func parseCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "parse [text]",
		Short: "Dry-run the batch parser on settlement text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := batchText(args, file)
			if err != nil {
				return err
			}

			parser := batch.NewParser(zerolog.Nop())

			lines, err := parser.Parse(text)
			if err != nil {
				return err
			}

			for i, line := range lines {
				fmt.Printf("line %d: %s %s\n", i+1, line.Amount.String(), line.Identity)
			}
			fmt.Printf("%d valid line(s)\n", len(lines))

			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Read batch text from file (- for stdin)")

	return cmd
}

// batchText resolves the settlement text from a positional argument, a
// file, or stdin.
func batchText(args []string, file string) (string, error) {
	if len(args) == 1 && args[0] != "" {
		return args[0], nil
	}

	switch file {
	case "":
		return "", fmt.Errorf("provide batch text as an argument or via --file")
	case "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		data, err := os.ReadFile(file)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}

func getJSON(path string) error {
	client := &http.Client{Timeout: timeout}

	resp, err := client.Get(baseURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func postJSON(path string, body any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	client := &http.Client{Timeout: timeout}

	resp, err := client.Post(baseURL+path, "application/json", &buf)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func putJSON(path string, body any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPut, baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: timeout}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func deleteRequest(path string) error {
	req, err := http.NewRequest(http.MethodDelete, baseURL+path, nil)
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: timeout}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, truncate(strings.TrimSpace(string(body)), 500))
	}

	if len(bytes.TrimSpace(body)) == 0 {
		fmt.Printf("OK (status %d)\n", resp.StatusCode)
		return nil
	}

	var parsed any
	if err := json.Unmarshal(body, &parsed); err != nil {
		fmt.Println(string(body))
		return nil
	}

	printJSON(parsed)

	return nil
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}

	fmt.Println(string(out))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}

	return s[:max-3] + "..."
}
