package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
)

var (
	stdinReader = bufio.NewReader(os.Stdin)
	accent      = color.New(color.FgCyan, color.Bold)
	success     = color.New(color.FgGreen, color.Bold)
	warn        = color.New(color.FgYellow, color.Bold)
	danger      = color.New(color.FgRed, color.Bold)
	neutral     = color.New(color.FgHiWhite)
)

type accountPayload struct {
	UserID      string    `json:"user_id"`
	Balance     int64     `json:"balance"`
	TotalEarned int64     `json:"total_earned"`
	GamesPlayed int64     `json:"games_played"`
	GamesWon    int64     `json:"games_won"`
	CreatedAt   time.Time `json:"created_at"`
}

type statementPayload struct {
	Wallet    int64      `json:"wallet"`
	Deposit   int64      `json:"deposit"`
	LoanOwed  int64      `json:"loan_owed"`
	LoanDueAt *time.Time `json:"loan_due_at"`
	Overdue   bool       `json:"overdue"`
}

type userStatsPayload struct {
	UserID        string   `json:"user_id"`
	Wallet        int64    `json:"wallet"`
	Deposit       int64    `json:"deposit"`
	LoanOwed      int64    `json:"loan_owed"`
	StockValue    int64    `json:"stock_value"`
	NetWorth      int64    `json:"net_worth"`
	TotalEarned   int64    `json:"total_earned"`
	GamesPlayed   int64    `json:"games_played"`
	GamesWon      int64    `json:"games_won"`
	Level         int      `json:"level"`
	PrestigeTier  int      `json:"prestige_tier"`
	EquippedTitle string   `json:"equipped_title"`
	Titles        []string `json:"titles"`
	Businesses    int      `json:"businesses"`
	DuelWins      int      `json:"duel_wins"`
	DuelLosses    int      `json:"duel_losses"`
	DuelRank      string   `json:"duel_rank"`
}

type serverStatsPayload struct {
	Users          int64 `json:"users"`
	TotalMoney     int64 `json:"total_money"`
	GamesPlayed    int64 `json:"games_played"`
	Businesses     int64 `json:"businesses"`
	OpenDuels      int64 `json:"open_duels"`
	ActiveLoans    int64 `json:"active_loans"`
	JailedUsers    int64 `json:"jailed_users"`
	MessagesTotal  int64 `json:"messages_total"`
	HighestBalance int64 `json:"highest_balance"`
}

type richListPayload struct {
	Rows []struct {
		Rank    int64  `json:"rank"`
		UserID  string `json:"user_id"`
		Balance int64  `json:"balance"`
	} `json:"rows"`
}

type companiesPayload struct {
	Companies []struct {
		Symbol     string    `json:"symbol"`
		Name       string    `json:"name"`
		PriceCents int64     `json:"price_cents"`
		UpdatedAt  time.Time `json:"updated_at"`
	} `json:"companies"`
}

type historyPayload struct {
	History []struct {
		PriceCents int64     `json:"price_cents"`
		TickAt     time.Time `json:"tick_at"`
	} `json:"history"`
}

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

func printError(msg string) {
	danger.Println(msg)
}

func printInfo(msg string) {
	neutral.Println(msg)
}

func promptRequired(label string) (string, error) {
	for {
		fmt.Printf("%s: ", label)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		text = strings.TrimSpace(text)
		if text != "" {
			return text, nil
		}
		printWarn(label + " is required.")
	}
}

func parseAmount(s string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("amount must be a positive whole number")
	}
	return v, nil
}

func renderAccount(raw map[string]any) error {
	a, err := decodeInto[accountPayload](raw)
	if err != nil {
		return err
	}
	accent.Printf("\n== ACCOUNT %s ==\n", a.UserID)
	fmt.Printf("Wallet:        %s coins\n", comma(a.Balance))
	fmt.Printf("Total earned:  %s coins\n", comma(a.TotalEarned))
	fmt.Printf("Games:         %d played, %d won\n", a.GamesPlayed, a.GamesWon)
	fmt.Printf("Member since:  %s\n", a.CreatedAt.Local().Format("2006-01-02"))
	fmt.Println()
	return nil
}

func renderStatement(raw map[string]any) error {
	st, err := decodeInto[statementPayload](raw)
	if err != nil {
		return err
	}
	accent.Println("\n== BANK STATEMENT ==")
	fmt.Printf("Wallet:   %s coins\n", comma(st.Wallet))
	fmt.Printf("Deposit:  %s coins\n", comma(st.Deposit))
	if st.LoanOwed > 0 {
		line := fmt.Sprintf("Loan:     %s coins owed", comma(st.LoanOwed))
		if st.LoanDueAt != nil {
			line += " (due " + st.LoanDueAt.Local().Format("2006-01-02 15:04") + ")"
		}
		if st.Overdue {
			danger.Println(line + " OVERDUE")
		} else {
			fmt.Println(line)
		}
	} else {
		printInfo("No open loan.")
	}
	fmt.Println()
	return nil
}

func renderUserStats(raw map[string]any) error {
	st, err := decodeInto[userStatsPayload](raw)
	if err != nil {
		return err
	}
	accent.Printf("\n== PROFILE %s ==\n", st.UserID)
	fmt.Printf("Net worth:  %s coins\n", comma(st.NetWorth))
	fmt.Printf("Wallet:     %s  Deposit: %s  Stocks: %s  Loan: %s\n",
		comma(st.Wallet), comma(st.Deposit), comma(st.StockValue), comma(st.LoanOwed))
	fmt.Printf("Level:      %d (prestige %d)\n", st.Level, st.PrestigeTier)
	if st.EquippedTitle != "" {
		fmt.Printf("Title:      %s\n", st.EquippedTitle)
	}
	if len(st.Titles) > 0 {
		fmt.Printf("Owned:      %s\n", strings.Join(st.Titles, ", "))
	}
	fmt.Printf("Games:      %d played, %d won\n", st.GamesPlayed, st.GamesWon)
	fmt.Printf("Duels:      %d-%d (%s)\n", st.DuelWins, st.DuelLosses, st.DuelRank)
	fmt.Printf("Businesses: %d\n", st.Businesses)
	fmt.Println()
	return nil
}

func renderServerStats(raw map[string]any) error {
	st, err := decodeInto[serverStatsPayload](raw)
	if err != nil {
		return err
	}
	accent.Println("\n== SERVER ECONOMY ==")
	fmt.Printf("Users:          %d\n", st.Users)
	fmt.Printf("Total money:    %s coins\n", comma(st.TotalMoney))
	fmt.Printf("Richest wallet: %s coins\n", comma(st.HighestBalance))
	fmt.Printf("Games played:   %d\n", st.GamesPlayed)
	fmt.Printf("Businesses:     %d\n", st.Businesses)
	fmt.Printf("Open duels:     %d\n", st.OpenDuels)
	fmt.Printf("Active loans:   %d\n", st.ActiveLoans)
	fmt.Printf("In jail:        %d\n", st.JailedUsers)
	fmt.Printf("Messages:       %d\n", st.MessagesTotal)
	fmt.Println()
	return nil
}

func renderRichList(raw map[string]any) error {
	out, err := decodeInto[richListPayload](raw)
	if err != nil {
		return err
	}
	accent.Println("\n== RICH LIST ==")
	if len(out.Rows) == 0 {
		printInfo("No accounts yet.")
		return nil
	}
	fmt.Printf("%-6s %-24s %14s\n", "RANK", "USER", "BALANCE")
	for _, row := range out.Rows {
		fmt.Printf("%-6d %-24s %14s\n", row.Rank, truncate(row.UserID, 24), comma(row.Balance))
	}
	fmt.Println()
	return nil
}

func renderStocksList(raw map[string]any) error {
	out, err := decodeInto[companiesPayload](raw)
	if err != nil {
		return err
	}
	accent.Println("\n== MARKET ==")
	if len(out.Companies) == 0 {
		printInfo("No companies listed.")
		return nil
	}
	fmt.Printf("%-8s %-24s %12s %-18s\n", "SYMBOL", "NAME", "PRICE", "UPDATED")
	for _, c := range out.Companies {
		fmt.Printf("%-8s %-24s %12s %-18s\n",
			c.Symbol,
			truncate(c.Name, 24),
			formatCents(c.PriceCents),
			c.UpdatedAt.Local().Format("2006-01-02 15:04"),
		)
	}
	fmt.Println()
	return nil
}

func renderHistory(raw map[string]any, symbol string) error {
	out, err := decodeInto[historyPayload](raw)
	if err != nil {
		return err
	}
	accent.Printf("\n== %s HISTORY ==\n", symbol)
	if len(out.History) == 0 {
		printInfo("No ticks recorded yet.")
		return nil
	}
	fmt.Printf("%-18s %12s\n", "TIME", "PRICE")
	for _, p := range out.History {
		fmt.Printf("%-18s %12s\n", p.TickAt.Local().Format("2006-01-02 15:04"), formatCents(p.PriceCents))
	}
	fmt.Println()
	return nil
}

func decodeInto[T any](in any) (T, error) {
	var out T
	raw, err := json.Marshal(in)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, err
	}
	return out, nil
}

func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%s.%02d", sign, comma(cents/100), cents%100)
}

func comma(v int64) string {
	s := strconv.FormatInt(v, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	if len(s) > 3 {
		var b strings.Builder
		pre := len(s) % 3
		if pre > 0 {
			b.WriteString(s[:pre])
			if len(s) > pre {
				b.WriteByte(',')
			}
		}
		for i := pre; i < len(s); i += 3 {
			b.WriteString(s[i : i+3])
			if i+3 < len(s) {
				b.WriteByte(',')
			}
		}
		s = b.String()
	}
	if neg {
		return "-" + s
	}
	return s
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
