package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	coinModel "novelhub-backend/internal/domains/coin/model"
	userModel "novelhub-backend/internal/domains/user/model"
)

// =====================================================
// grant-coins
// =====================================================

var (
	grantUser   string
	grantAmount int64
	grantNote   string
)

var grantCoinsCmd = &cobra.Command{
	Use:   "grant-coins",
	Short: "Credit coins to a user through the ledger",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if grantAmount < 1 || grantAmount > coinModel.MaxTransferAmount {
			return fmt.Errorf("--amount must be between 1 and %d", coinModel.MaxTransferAmount)
		}

		ctx := cmd.Context()
		rt, err := openRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()

		profile, err := rt.findProfile(ctx, grantUser)
		if err != nil {
			return fmt.Errorf("find user %q: %w", grantUser, err)
		}

		note := grantNote
		if note == "" {
			note = "Admin grant (novelctl)"
		}

		tx, err := rt.coins.AddCoins(ctx, profile.ID, grantAmount, coinModel.TxAdminGrant, nil, note)
		if err != nil {
			return err
		}

		color.New(color.FgHiGreen, color.Bold).Printf("🪙 Granted %d coins to @%s\n", grantAmount, profile.Username)
		fmt.Printf("balance: %d\n", tx.BalanceAfter)
		return nil
	},
}

// =====================================================
// ledger
// =====================================================

var (
	ledgerUser  string
	ledgerType  string
	ledgerLimit int
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Show the latest coin transactions of a user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := openRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()

		profile, err := rt.findProfile(ctx, ledgerUser)
		if err != nil {
			return fmt.Errorf("find user %q: %w", ledgerUser, err)
		}

		return printLedger(ctx, rt, profile)
	},
}

func printLedger(ctx context.Context, rt *runtime, profile *userModel.Profile) error {
	history, err := rt.coins.History(ctx, profile.ID, coinModel.HistoryRequest{Type: ledgerType, Page: 1, Limit: ledgerLimit})
	if err != nil {
		return err
	}

	color.New(color.Bold).Printf("@%s  balance %d  (%d transactions total)\n", profile.Username, profile.Coins, history.Total)
	if len(history.Transactions) == 0 {
		fmt.Println("🤷‍♂️ No transactions")
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"When", "Type", "🪙", "Balance", "Description"})
	table.SetAutoWrapText(false)

	for _, t := range history.Transactions {
		amountColor := tablewriter.FgHiGreenColor
		if t.Amount < 0 {
			amountColor = tablewriter.FgHiRedColor
		}

		row := []string{
			t.CreatedAt.Local().Format("2006-01-02 15:04"),
			string(t.Type),
			strconv.FormatInt(t.Amount, 10),
			strconv.FormatInt(t.BalanceAfter, 10),
			t.Description,
		}
		table.Rich(row, []tablewriter.Colors{
			{},
			{},
			{amountColor, tablewriter.Bold},
			{},
			{},
		})
	}

	table.Render()
	return nil
}

func init() {
	grantCoinsCmd.Flags().StringVar(&grantUser, "user", "", "username or profile id")
	grantCoinsCmd.Flags().Int64Var(&grantAmount, "amount", 0, "coins to credit")
	grantCoinsCmd.Flags().StringVar(&grantNote, "note", "", "ledger description")
	_ = grantCoinsCmd.MarkFlagRequired("user")
	_ = grantCoinsCmd.MarkFlagRequired("amount")

	ledgerCmd.Flags().StringVar(&ledgerUser, "user", "", "username or profile id")
	ledgerCmd.Flags().StringVar(&ledgerType, "type", "", "filter by transaction type")
	ledgerCmd.Flags().IntVar(&ledgerLimit, "limit", 20, "rows to show")
	_ = ledgerCmd.MarkFlagRequired("user")
}
