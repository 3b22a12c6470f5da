package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"butter-invoicing/internal/core"
	"butter-invoicing/internal/ingest"
)

type appService struct {
	clients      core.ClientService
	invoices     core.InvoiceService
	recurring    core.RecurringService
	expenses     core.ExpenseService
	transactions core.TransactionService
	reconciler   core.ReconcileService
	settings     core.SettingsService
	reporting    core.ReportingService
	scheduler    *core.Scheduler
	bankFeed     BankFeed
}

// NewAppService constructs an appService that satisfies ApplicationService.
// bankFeed may be nil when no bank API is configured.
func NewAppService(
	clients core.ClientService,
	invoices core.InvoiceService,
	recurring core.RecurringService,
	expenses core.ExpenseService,
	transactions core.TransactionService,
	reconciler core.ReconcileService,
	settings core.SettingsService,
	reporting core.ReportingService,
	scheduler *core.Scheduler,
	bankFeed BankFeed,
) ApplicationService {
	return &appService{
		clients:      clients,
		invoices:     invoices,
		recurring:    recurring,
		expenses:     expenses,
		transactions: transactions,
		reconciler:   reconciler,
		settings:     settings,
		reporting:    reporting,
		scheduler:    scheduler,
		bankFeed:     bankFeed,
	}
}

func (s *appService) CreateClient(ctx context.Context, req CreateClientRequest) (*ClientResult, error) {
	client, err := s.clients.CreateClient(ctx, core.ClientInput{
		Name:        req.Name,
		ContactName: req.ContactName,
		Email:       req.Email,
	})
	if err != nil {
		return nil, err
	}
	return &ClientResult{Client: client}, nil
}

func (s *appService) ListClients(ctx context.Context) (*ClientListResult, error) {
	clients, err := s.clients.GetClients(ctx)
	if err != nil {
		return nil, err
	}
	return &ClientListResult{Clients: clients}, nil
}

func (s *appService) GetClient(ctx context.Context, id string) (*ClientResult, error) {
	client, err := s.clients.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ClientResult{Client: client}, nil
}

func (s *appService) UpdateClientContact(ctx context.Context, id string, req UpdateClientRequest) (*ClientResult, error) {
	client, err := s.clients.UpdateClientContact(ctx, id, core.ClientInput{
		ContactName: req.ContactName,
		Email:       req.Email,
	})
	if err != nil {
		return nil, err
	}
	return &ClientResult{Client: client}, nil
}

func (s *appService) DeleteClient(ctx context.Context, id string) error {
	return s.clients.DeleteClient(ctx, id)
}

func (s *appService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResult, error) {
	status := core.InvoiceStatus(req.Status)
	if req.Status == "" {
		status = core.InvoiceDraft
	}
	invoice, err := s.invoices.CreateInvoice(ctx, core.InvoiceInput{
		ClientID:     req.ClientID,
		IssueDate:    req.IssueDate,
		PaymentTerms: req.PaymentTerms,
		Status:       status,
		IncludeGST:   req.IncludeGST,
		Lines:        toLineItems(req.Lines),
	})
	if err != nil {
		return nil, err
	}
	return &InvoiceResult{Invoice: invoice}, nil
}

func (s *appService) ListInvoices(ctx context.Context, status, clientID string) (*InvoiceListResult, error) {
	filter := core.InvoiceFilter{}
	if status != "" {
		st := core.InvoiceStatus(status)
		if !st.Valid() {
			return nil, fmt.Errorf("invalid status filter %q: %w", status, core.ErrValidation)
		}
		filter.Status = &st
	}
	if clientID != "" {
		filter.ClientID = &clientID
	}
	invoices, err := s.invoices.GetInvoices(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &InvoiceListResult{Invoices: invoices}, nil
}

func (s *appService) GetInvoice(ctx context.Context, id string) (*InvoiceResult, error) {
	invoice, err := s.invoices.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	return &InvoiceResult{Invoice: invoice}, nil
}

func (s *appService) UpdateInvoiceStatus(ctx context.Context, id string, status core.InvoiceStatus) (*InvoiceResult, error) {
	invoice, err := s.invoices.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	return &InvoiceResult{Invoice: invoice}, nil
}

func (s *appService) MarkOverdueInvoices(ctx context.Context) (*OverdueResult, error) {
	marked, err := s.invoices.MarkOverdue(ctx, time.Now().Format(core.DateLayout))
	if err != nil {
		return nil, err
	}
	return &OverdueResult{Marked: marked}, nil
}

func (s *appService) CreateRecurringProfile(ctx context.Context, req CreateRecurringRequest) (*RecurringResult, error) {
	profile, err := s.recurring.CreateProfile(ctx, core.RecurringInvoiceInput{
		ClientID:     req.ClientID,
		StartDate:    req.StartDate,
		Frequency:    core.Frequency(req.Frequency),
		PaymentTerms: req.PaymentTerms,
		IncludeGST:   req.IncludeGST,
		Lines:        toLineItems(req.Lines),
	})
	if err != nil {
		return nil, err
	}
	return &RecurringResult{Profile: profile}, nil
}

func (s *appService) ListRecurringProfiles(ctx context.Context) (*RecurringListResult, error) {
	profiles, err := s.recurring.GetProfiles(ctx)
	if err != nil {
		return nil, err
	}
	return &RecurringListResult{Profiles: profiles}, nil
}

func (s *appService) GetRecurringProfile(ctx context.Context, id string) (*RecurringResult, error) {
	profile, err := s.recurring.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	return &RecurringResult{Profile: profile}, nil
}

func (s *appService) PauseRecurringProfile(ctx context.Context, id string) (*RecurringResult, error) {
	profile, err := s.recurring.PauseProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	return &RecurringResult{Profile: profile}, nil
}

func (s *appService) ResumeRecurringProfile(ctx context.Context, id string) (*RecurringResult, error) {
	profile, err := s.recurring.ResumeProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	return &RecurringResult{Profile: profile}, nil
}

func (s *appService) RunScheduler(ctx context.Context, today string) (*core.RunResult, error) {
	if today == "" {
		today = time.Now().Format(core.DateLayout)
	}
	return s.scheduler.Run(ctx, today)
}

func (s *appService) ImportTransactionsCSV(ctx context.Context, r io.Reader) (*ImportResult, error) {
	parsed, err := ingest.ParseWiseCSV(r)
	if err != nil {
		return nil, err
	}
	merged, err := s.transactions.MergeTransactions(ctx, parsed.Transactions)
	if err != nil {
		return nil, err
	}
	return &ImportResult{
		Inserted: merged.Inserted,
		Skipped:  merged.Skipped,
		Filtered: parsed.Filtered,
	}, nil
}

func (s *appService) SyncBankTransactions(ctx context.Context) (*ImportResult, error) {
	if s.bankFeed == nil {
		return nil, fmt.Errorf("bank feed is not configured: %w", core.ErrValidation)
	}
	txns, err := s.bankFeed.FetchTransactions(ctx, time.Now())
	if err != nil {
		return nil, err
	}
	merged, err := s.transactions.MergeTransactions(ctx, txns)
	if err != nil {
		return nil, err
	}
	return &ImportResult{Inserted: merged.Inserted, Skipped: merged.Skipped}, nil
}

func (s *appService) ListTransactions(ctx context.Context) (*TransactionListResult, error) {
	txns, err := s.transactions.GetTransactions(ctx)
	if err != nil {
		return nil, err
	}
	return &TransactionListResult{Transactions: txns}, nil
}

func (s *appService) GetTransaction(ctx context.Context, id string) (*TransactionResult, error) {
	txn, err := s.transactions.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	return &TransactionResult{Transaction: txn}, nil
}

func (s *appService) SuggestMatches(ctx context.Context, transactionID string) (*core.MatchSuggestions, error) {
	return s.reconciler.SuggestMatches(ctx, transactionID)
}

func (s *appService) ConfirmInvoiceMatch(ctx context.Context, transactionID, invoiceID string) error {
	return s.reconciler.ConfirmInvoiceMatch(ctx, transactionID, invoiceID)
}

func (s *appService) ConfirmExpenseMatch(ctx context.Context, transactionID, expenseID string) error {
	return s.reconciler.ConfirmExpenseMatch(ctx, transactionID, expenseID)
}

func (s *appService) CreateExpense(ctx context.Context, req CreateExpenseRequest) (*ExpenseResult, error) {
	expense, err := s.expenses.CreateExpense(ctx, core.ExpenseInput{
		Category:    req.Category,
		Description: req.Description,
		Amount:      req.Amount,
		Date:        req.Date,
	})
	if err != nil {
		return nil, err
	}
	return &ExpenseResult{Expense: expense}, nil
}

func (s *appService) ListExpenses(ctx context.Context, unpaidOnly bool) (*ExpenseListResult, error) {
	expenses, err := s.expenses.GetExpenses(ctx, unpaidOnly)
	if err != nil {
		return nil, err
	}
	return &ExpenseListResult{Expenses: expenses}, nil
}

func (s *appService) GetSettings(ctx context.Context) (*core.Settings, error) {
	return s.settings.GetSettings(ctx)
}

func (s *appService) UpdateSettings(ctx context.Context, req core.SettingsInput) (*core.Settings, error) {
	return s.settings.UpdateSettings(ctx, req)
}

func (s *appService) TaxSummary(ctx context.Context, endYear int) (*core.TaxSummary, error) {
	return s.reporting.TaxSummary(ctx, endYear)
}

func toLineItems(in []LineItemInput) []core.LineItem {
	lines := make([]core.LineItem, len(in))
	for i, l := range in {
		lines[i] = core.LineItem{
			Category:    l.Category,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		}
	}
	return lines
}
