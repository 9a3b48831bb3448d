package stats

type UserStats struct {
	UserID        string   `json:"user_id"`
	Wallet        int64    `json:"wallet"`
	Deposit       int64    `json:"deposit"`
	LoanOwed      int64    `json:"loan_owed,omitempty"`
	StockValue    int64    `json:"stock_value"`
	NetWorth      int64    `json:"net_worth"`
	TotalEarned   int64    `json:"total_earned"`
	GamesPlayed   int64    `json:"games_played"`
	GamesWon      int64    `json:"games_won"`
	GameWinRate   float64  `json:"game_win_rate"`
	Level         int      `json:"level"`
	XP            int64    `json:"xp"`
	PrestigeTier  int      `json:"prestige_tier"`
	EquippedTitle string   `json:"equipped_title,omitempty"`
	Titles        []string `json:"titles,omitempty"`
	Businesses    int      `json:"businesses"`
	DuelWins      int      `json:"duel_wins"`
	DuelLosses    int      `json:"duel_losses"`
	DuelRank      string   `json:"duel_rank"`
}

type ServerStats struct {
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
