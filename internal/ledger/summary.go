package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"tesoro/internal/models"
)

// UncategorizedLabel groups transactions whose category no longer exists.
const UncategorizedLabel = "Uncategorized"

// nearDeadlineDays is the horizon within which an open goal counts as near its deadline.
const nearDeadlineDays = 7

// PeriodTotals counts and sums the budgets of one period.
type PeriodTotals struct {
	Count       int             `json:"count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// BudgetCategoryEntry is a budget as listed in the per-category summary.
type BudgetCategoryEntry struct {
	Amount decimal.Decimal     `json:"amount"`
	Period models.BudgetPeriod `json:"period"`
}

// BudgetSummary aggregates a user's budgets.
type BudgetSummary struct {
	TotalBudgets int                            `json:"total_budgets"`
	Monthly      PeriodTotals                   `json:"monthly"`
	Weekly       PeriodTotals                   `json:"weekly"`
	ByCategory   map[string]BudgetCategoryEntry `json:"by_category"`
}

// SummarizeBudgets groups budgets by period and by category name. Budgets
// whose category is not loaded are listed under UncategorizedLabel.
func SummarizeBudgets(budgets []models.Budget) BudgetSummary {
	s := BudgetSummary{
		TotalBudgets: len(budgets),
		ByCategory:   make(map[string]BudgetCategoryEntry, len(budgets)),
	}
	for i := range budgets {
		b := &budgets[i]
		switch b.Period {
		case models.BudgetPeriodMonthly:
			s.Monthly.Count++
			s.Monthly.TotalAmount = s.Monthly.TotalAmount.Add(b.AmountLimit)
		case models.BudgetPeriodWeekly:
			s.Weekly.Count++
			s.Weekly.TotalAmount = s.Weekly.TotalAmount.Add(b.AmountLimit)
		}
		name := UncategorizedLabel
		if b.Category != nil {
			name = b.Category.Name
		}
		s.ByCategory[name] = BudgetCategoryEntry{Amount: b.AmountLimit, Period: b.Period}
	}
	return s
}

// DebtSummary aggregates a user's debts.
type DebtSummary struct {
	TotalDebts          int             `json:"total_debts"`
	ActiveDebts         int             `json:"active_debts"`
	PaidOffDebts        int             `json:"paid_off_debts"`
	TotalDebtAmount     decimal.Decimal `json:"total_debt_amount"`
	TotalRemaining      decimal.Decimal `json:"total_remaining"`
	TotalPaid           decimal.Decimal `json:"total_paid"`
	PaymentProgress     float64         `json:"payment_progress"`
	DebtsWithInterest   int             `json:"debts_with_interest"`
	AverageInterestRate float64         `json:"average_interest_rate"`
}

// SummarizeDebts totals debts and averages the interest rate over debts
// carrying a positive rate.
func SummarizeDebts(debts []models.Debt) DebtSummary {
	s := DebtSummary{TotalDebts: len(debts)}
	interestSum := decimal.Zero
	for i := range debts {
		d := &debts[i]
		if d.RemainingAmount.IsPositive() {
			s.ActiveDebts++
		} else if d.RemainingAmount.IsZero() {
			s.PaidOffDebts++
		}
		s.TotalDebtAmount = s.TotalDebtAmount.Add(d.TotalAmount)
		s.TotalRemaining = s.TotalRemaining.Add(d.RemainingAmount)
		if d.InterestRate != nil && *d.InterestRate > 0 {
			s.DebtsWithInterest++
			interestSum = interestSum.Add(decimal.NewFromFloat(*d.InterestRate))
		}
	}
	s.TotalPaid = s.TotalDebtAmount.Sub(s.TotalRemaining)
	s.PaymentProgress = Percent(s.TotalPaid, s.TotalDebtAmount)
	if s.DebtsWithInterest > 0 {
		s.AverageInterestRate = interestSum.
			Div(decimal.NewFromInt(int64(s.DebtsWithInterest))).
			Round(2).
			InexactFloat64()
	}
	return s
}

// GoalSummary aggregates a user's goals.
type GoalSummary struct {
	TotalGoals        int             `json:"total_goals"`
	ActiveGoals       int             `json:"active_goals"`
	CompletedGoals    int             `json:"completed_goals"`
	PausedGoals       int             `json:"paused_goals"`
	TotalTarget       decimal.Decimal `json:"total_target"`
	TotalSaved        decimal.Decimal `json:"total_saved"`
	TotalRemaining    decimal.Decimal `json:"total_remaining"`
	OverallProgress   float64         `json:"overall_progress"`
	GoalsNearDeadline int             `json:"goals_near_deadline"`
	OverdueGoals      int             `json:"overdue_goals"`
}

// SummarizeGoals counts goals by status and classifies the deadlines of
// goals that are not completed.
func SummarizeGoals(goals []models.Goal, today time.Time) GoalSummary {
	s := GoalSummary{TotalGoals: len(goals)}
	for i := range goals {
		g := &goals[i]
		s.TotalTarget = s.TotalTarget.Add(g.TargetAmount)
		s.TotalSaved = s.TotalSaved.Add(g.CurrentAmount)

		switch g.Status {
		case models.GoalStatusActive:
			s.ActiveGoals++
		case models.GoalStatusCompleted:
			s.CompletedGoals++
		case models.GoalStatusPaused:
			s.PausedGoals++
		}

		if g.Deadline == nil || g.Status == models.GoalStatusCompleted {
			continue
		}
		days := DaysBetween(today, *g.Deadline)
		if days < 0 {
			s.OverdueGoals++
		} else if days <= nearDeadlineDays {
			s.GoalsNearDeadline++
		}
	}
	s.TotalRemaining = s.TotalTarget.Sub(s.TotalSaved)
	s.OverallProgress = Percent(s.TotalSaved, s.TotalTarget)
	return s
}

// CategoryStats counts a user's categories by type.
type CategoryStats struct {
	Total   int `json:"total"`
	Income  int `json:"income"`
	Expense int `json:"expense"`
}

// SummarizeCategories counts categories by type.
func SummarizeCategories(categories []models.Category) CategoryStats {
	s := CategoryStats{Total: len(categories)}
	for i := range categories {
		switch categories[i].Type {
		case models.CategoryTypeIncome:
			s.Income++
		case models.CategoryTypeExpense:
			s.Expense++
		}
	}
	return s
}

// TypeCounts counts transactions per type.
type TypeCounts struct {
	Income   int `json:"income"`
	Expense  int `json:"expense"`
	Transfer int `json:"transfer"`
}

// TransactionSummary totals transactions by type.
type TransactionSummary struct {
	TotalTransactions     int             `json:"total_transactions"`
	Income                decimal.Decimal `json:"income"`
	Expense               decimal.Decimal `json:"expense"`
	Transfer              decimal.Decimal `json:"transfer"`
	NetIncome             decimal.Decimal `json:"net_income"`
	RecurringTransactions int             `json:"recurring_transactions"`
	TransactionsByType    TypeCounts      `json:"transactions_by_type"`
}

// SummarizeTransactions totals amounts and counts per type. Net income is
// income minus expense; transfers do not affect it.
func SummarizeTransactions(txs []models.Transaction) TransactionSummary {
	s := TransactionSummary{TotalTransactions: len(txs)}
	for i := range txs {
		t := &txs[i]
		switch t.Type {
		case models.TransactionTypeIncome:
			s.Income = s.Income.Add(t.Amount)
			s.TransactionsByType.Income++
		case models.TransactionTypeExpense:
			s.Expense = s.Expense.Add(t.Amount)
			s.TransactionsByType.Expense++
		case models.TransactionTypeTransfer:
			s.Transfer = s.Transfer.Add(t.Amount)
			s.TransactionsByType.Transfer++
		}
		if t.IsRecurring {
			s.RecurringTransactions++
		}
	}
	s.NetIncome = s.Income.Sub(s.Expense)
	return s
}

// CategoryBreakdown sums the transactions of one category.
type CategoryBreakdown struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Total   decimal.Decimal `json:"total"`
	Count   int             `json:"count"`
}

// GroupByCategory groups transactions by category name. Transfers are
// counted but add nothing to the sums.
func GroupByCategory(txs []models.Transaction) map[string]CategoryBreakdown {
	groups := make(map[string]CategoryBreakdown)
	for i := range txs {
		t := &txs[i]
		name := UncategorizedLabel
		if t.Category != nil {
			name = t.Category.Name
		}
		g := groups[name]
		switch t.Type {
		case models.TransactionTypeIncome:
			g.Income = g.Income.Add(t.Amount)
			g.Total = g.Total.Add(t.Amount)
		case models.TransactionTypeExpense:
			g.Expense = g.Expense.Add(t.Amount)
			g.Total = g.Total.Add(t.Amount)
		}
		g.Count++
		groups[name] = g
	}
	return groups
}

// ReportPeriod describes the calendar window of a monthly report.
type ReportPeriod struct {
	Year      int    `json:"year"`
	Month     int    `json:"month"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// MonthlyReport composes the summary and category breakdown of one month.
type MonthlyReport struct {
	Period     ReportPeriod                 `json:"period"`
	Summary    TransactionSummary           `json:"summary"`
	ByCategory map[string]CategoryBreakdown `json:"by_category"`
}

// BuildMonthlyReport aggregates the transactions of the given month that
// fall inside its inclusive window. Rows outside the window are ignored.
func BuildMonthlyReport(year, month int, txs []models.Transaction) (MonthlyReport, error) {
	start, end, err := MonthRange(year, month)
	if err != nil {
		return MonthlyReport{}, invalid("%s", err.Error())
	}
	w := Window{Start: &start, End: &end}
	inMonth := make([]models.Transaction, 0, len(txs))
	for i := range txs {
		if w.Contains(txs[i].Date) {
			inMonth = append(inMonth, txs[i])
		}
	}
	return MonthlyReport{
		Period: ReportPeriod{
			Year:      year,
			Month:     month,
			StartDate: FormatDay(start),
			EndDate:   FormatDay(end),
		},
		Summary:    SummarizeTransactions(inMonth),
		ByCategory: GroupByCategory(inMonth),
	}, nil
}
