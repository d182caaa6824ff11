// Package reconciler orchestrates a full resynchronization pass: it pulls
// balances and transactions from the bank feed and the brokerage, converts
// everything into the target currency, categorizes each transaction and
// rebuilds the local transaction table.
package reconciler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"fjacquet/finsync/internal/bankfeed"
	"fjacquet/finsync/internal/brokerage"
	"fjacquet/finsync/internal/logging"
	"fjacquet/finsync/internal/models"
	"fjacquet/finsync/internal/rates"
	"fjacquet/finsync/internal/upstream"

	"github.com/google/uuid"
)

// ErrSyncInProgress is returned when Run is called while another pass holds
// the run lock.
var ErrSyncInProgress = errors.New("a sync run is already in progress")

// BrokerageAccountID is the local account id of the single linked brokerage.
const BrokerageAccountID = "trading212"

// BankFeed is the slice of the bank client the reconciler needs.
type BankFeed interface {
	Configured() bool
	ListBalances(ctx context.Context, accountID string) ([]bankfeed.Balance, error)
	ListTransactions(ctx context.Context, accountID, dateFrom, dateTo string) ([]bankfeed.FeedTransaction, error)
}

// Brokerage is the slice of the brokerage client the reconciler needs.
type Brokerage interface {
	Configured() bool
	GetCash(ctx context.Context) (brokerage.Cash, error)
	GetPositions(ctx context.Context) ([]brokerage.Position, error)
	GetOrders(ctx context.Context, limit int) ([]brokerage.Order, error)
	GetDividends(ctx context.Context, limit int) ([]brokerage.Dividend, error)
}

// Classifier assigns a category to a transaction description.
type Classifier interface {
	Classify(description string) string
}

// Store is the persistence the reconciler needs. *store.Store satisfies it.
type Store interface {
	CreateSyncRun(startedAt time.Time) (int64, error)
	CompleteSyncRun(id int64, accounts, transactions int, errText string) error
	FailSyncRun(id int64, errText string) error
	LatestSyncRun() (models.SyncRun, bool, error)
	ClearTransactions() error
	UpsertTransaction(t models.Transaction) error
	UpsertAccount(a models.Account) error
	GetAccount(id string) (models.Account, bool, error)
}

// Options carries the sync tunables from configuration.
type Options struct {
	BankAccountIDs []string
	TargetCurrency string
	WindowDays     int
	OrderLimit     int
}

// Reconciler runs sync passes. At most one pass runs at a time.
type Reconciler struct {
	store      Store
	feed       BankFeed
	broker     Brokerage
	rateSource rates.Source
	classifier Classifier
	opts       Options
	log        logging.Logger

	mu  sync.Mutex
	now func() time.Time
}

// New assembles a reconciler.
func New(store Store, feed BankFeed, broker Brokerage, rateSource rates.Source, classifier Classifier, opts Options, logger logging.Logger) *Reconciler {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Reconciler{
		store:      store,
		feed:       feed,
		broker:     broker,
		rateSource: rateSource,
		classifier: classifier,
		opts:       opts,
		log:        logger,
		now:        time.Now,
	}
}

// Run executes one full sync pass. A failing account is skipped and noted on
// the run; a rate-limited upstream or a cancelled context aborts the whole
// pass and marks the run failed.
func (r *Reconciler) Run(ctx context.Context) error {
	if !r.mu.TryLock() {
		return ErrSyncInProgress
	}
	defer r.mu.Unlock()

	runID, err := r.store.CreateSyncRun(r.now())
	if err != nil {
		return fmt.Errorf("recording sync run: %w", err)
	}
	log := r.log.WithField(logging.FieldRunID, runID)
	log.Info("Sync started")

	// One normalizer per pass: every conversion in this run sees the same
	// rate, and each currency pair costs at most one upstream call.
	normalizer := rates.NewNormalizer(r.rateSource, r.opts.TargetCurrency, r.log)

	if err := r.store.ClearTransactions(); err != nil {
		return r.fail(runID, fmt.Errorf("clearing transactions: %w", err))
	}

	var (
		accountsSynced int
		txSynced       int
		accountErrs    []string
	)

	switch {
	case r.feed.Configured():
		for _, accountID := range r.opts.BankAccountIDs {
			if err := ctx.Err(); err != nil {
				return r.fail(runID, err)
			}
			count, err := r.syncBankAccount(ctx, normalizer, accountID)
			if err != nil {
				if errors.Is(err, upstream.ErrRateLimited) {
					return r.fail(runID, err)
				}
				log.WithError(err).WithField(logging.FieldAccountID, accountID).
					Warn("Bank account sync failed, continuing with remaining accounts")
				accountErrs = append(accountErrs, fmt.Sprintf("account %s: %v", accountID, err))
				continue
			}
			accountsSynced++
			txSynced += count
		}
	case len(r.opts.BankAccountIDs) > 0:
		// Accounts are linked but credentials are missing: a
		// configuration error scoped to this collaborator.
		log.Warn("Bank feed credentials missing, skipping bank accounts")
		accountErrs = append(accountErrs, fmt.Sprintf("bank feed: %v", upstream.ErrNotConfigured))
	default:
		log.Debug("No bank accounts linked, skipping bank feed")
	}

	if r.broker.Configured() {
		count, err := r.syncBrokerage(ctx, normalizer)
		switch {
		case errors.Is(err, upstream.ErrRateLimited):
			return r.fail(runID, err)
		case err != nil:
			log.WithError(err).Warn("Brokerage sync failed")
			accountErrs = append(accountErrs, fmt.Sprintf("brokerage: %v", err))
		default:
			accountsSynced++
			txSynced += count
		}
	} else {
		log.Debug("Brokerage not configured, skipping")
	}

	if err := ctx.Err(); err != nil {
		return r.fail(runID, err)
	}

	errText := strings.Join(accountErrs, "; ")
	if err := r.store.CompleteSyncRun(runID, accountsSynced, txSynced, errText); err != nil {
		return fmt.Errorf("completing sync run: %w", err)
	}
	log.WithFields(
		logging.Field{Key: "accounts", Value: accountsSynced},
		logging.Field{Key: logging.FieldCount, Value: txSynced},
	).Info("Sync completed")
	return nil
}

func (r *Reconciler) fail(runID int64, cause error) error {
	if err := r.store.FailSyncRun(runID, cause.Error()); err != nil {
		r.log.WithError(err).WithField(logging.FieldRunID, runID).Error("Failed to record failed run")
	}
	r.log.WithError(cause).WithField(logging.FieldRunID, runID).Error("Sync failed")
	return cause
}

// Status reports the latest run, or a never-synced placeholder when no run
// has been recorded.
func (r *Reconciler) Status() (models.SyncRun, error) {
	run, found, err := r.store.LatestSyncRun()
	if err != nil {
		return models.SyncRun{}, err
	}
	if !found {
		return models.SyncRun{Status: models.RunStatusNever}, nil
	}
	return run, nil
}

func (r *Reconciler) syncBankAccount(ctx context.Context, normalizer *rates.Normalizer, accountID string) (int, error) {
	balances, err := r.feed.ListBalances(ctx, accountID)
	if err != nil {
		return 0, fmt.Errorf("listing balances: %w", err)
	}
	preferred, ok := bankfeed.PreferredBalance(balances)
	if !ok {
		return 0, fmt.Errorf("account reported no balances")
	}

	account := models.Account{
		ID:          accountID,
		Name:        "Bank account",
		Kind:        models.AccountKindBank,
		Institution: "GoCardless",
	}
	// Display metadata survives resyncs.
	if existing, found, err := r.store.GetAccount(accountID); err == nil && found {
		account.Name = existing.Name
		account.Hidden = existing.Hidden
		account.Institution = existing.Institution
	}
	account.Balance = normalizer.Normalize(ctx, preferred.Amount)
	account.LastSynced = r.now()
	if err := r.store.UpsertAccount(account); err != nil {
		return 0, fmt.Errorf("saving account: %w", err)
	}

	now := r.now()
	dateFrom := now.AddDate(0, 0, -r.opts.WindowDays).Format("2006-01-02")
	dateTo := now.Format("2006-01-02")
	feedTxs, err := r.feed.ListTransactions(ctx, accountID, dateFrom, dateTo)
	if err != nil {
		return 0, fmt.Errorf("listing transactions: %w", err)
	}

	count := 0
	for _, ft := range feedTxs {
		tx, ok := r.bankTransaction(ctx, normalizer, accountID, ft)
		if !ok {
			continue
		}
		if err := r.store.UpsertTransaction(tx); err != nil {
			return count, fmt.Errorf("saving transaction %s: %w", tx.ID, err)
		}
		count++
	}
	return count, nil
}

// bankTransaction converts one feed record into a local transaction. Records
// without a usable id, date or amount are dropped with a warning rather than
// failing the account.
func (r *Reconciler) bankTransaction(ctx context.Context, normalizer *rates.Normalizer, accountID string, ft bankfeed.FeedTransaction) (models.Transaction, bool) {
	log := r.log.WithField(logging.FieldAccountID, accountID)

	id := ft.EffectiveID()
	if id == "" {
		log.WithField(logging.FieldReason, "missing id").Warn("Dropping feed transaction")
		return models.Transaction{}, false
	}
	date, err := time.Parse("2006-01-02", ft.EffectiveDate())
	if err != nil {
		log.WithError(err).WithField(logging.FieldTransactionID, id).Warn("Dropping feed transaction with bad date")
		return models.Transaction{}, false
	}
	money, err := models.NewMoneyFromString(ft.TransactionAmount.Amount, ft.TransactionAmount.Currency)
	if err != nil {
		log.WithError(err).WithField(logging.FieldTransactionID, id).Warn("Dropping feed transaction with bad amount")
		return models.Transaction{}, false
	}

	description := ft.Description()
	category := r.classifier.Classify(description)
	raw, _ := json.Marshal(ft)

	return models.Transaction{
		ID:          id,
		AccountID:   accountID,
		Date:        date,
		Description: description,
		Amount:      normalizer.Normalize(ctx, money),
		Category:    category,
		Excluded:    category == models.CategoryInternalTransfer,
		AccountKind: models.AccountKindBank,
		RawJSON:     string(raw),
	}, true
}

func (r *Reconciler) syncBrokerage(ctx context.Context, normalizer *rates.Normalizer) (int, error) {
	cash, err := r.broker.GetCash(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetching cash: %w", err)
	}
	positions, err := r.broker.GetPositions(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetching positions: %w", err)
	}

	value := cash.Free
	for _, p := range positions {
		value += p.MarketValue()
	}

	account := models.Account{
		ID:          BrokerageAccountID,
		Name:        "Trading212",
		Kind:        models.AccountKindInvestment,
		Institution: "Trading212",
	}
	if existing, found, err := r.store.GetAccount(BrokerageAccountID); err == nil && found {
		account.Name = existing.Name
		account.Hidden = existing.Hidden
	}
	account.Balance = normalizer.Normalize(ctx, models.NewMoneyFromFloat(value, cash.Currency))
	account.LastSynced = r.now()
	if err := r.store.UpsertAccount(account); err != nil {
		return 0, fmt.Errorf("saving account: %w", err)
	}

	count := 0
	orders, err := r.broker.GetOrders(ctx, r.opts.OrderLimit)
	if err != nil {
		return 0, fmt.Errorf("fetching orders: %w", err)
	}
	for _, o := range orders {
		tx, ok := r.orderTransaction(ctx, normalizer, cash.Currency, o)
		if !ok {
			continue
		}
		if err := r.store.UpsertTransaction(tx); err != nil {
			return count, fmt.Errorf("saving order %s: %w", tx.ID, err)
		}
		count++
	}

	dividends, err := r.broker.GetDividends(ctx, r.opts.OrderLimit)
	if err != nil {
		return count, fmt.Errorf("fetching dividends: %w", err)
	}
	for _, d := range dividends {
		tx, ok := r.dividendTransaction(ctx, normalizer, cash.Currency, d)
		if !ok {
			continue
		}
		if err := r.store.UpsertTransaction(tx); err != nil {
			return count, fmt.Errorf("saving dividend %s: %w", tx.ID, err)
		}
		count++
	}
	return count, nil
}

func (r *Reconciler) orderTransaction(ctx context.Context, normalizer *rates.Normalizer, currency string, o brokerage.Order) (models.Transaction, bool) {
	if o.FilledQuantity == 0 {
		return models.Transaction{}, false
	}
	date, ok := parseTimestampDay(o.EffectiveDate())
	if !ok {
		r.log.WithField(logging.FieldReason, "bad order date").Warn("Dropping brokerage order")
		return models.Transaction{}, false
	}

	id := strconv.FormatInt(o.ID, 10)
	if o.ID == 0 {
		id = uuid.NewString()
	}
	amount := models.NewMoneyFromFloat(-o.FillPrice*o.FilledQuantity, currency)
	raw, _ := json.Marshal(o)

	return models.Transaction{
		ID:          id,
		AccountID:   BrokerageAccountID,
		Date:        date,
		Description: fmt.Sprintf("%s %s", o.Type, o.Ticker),
		Amount:      normalizer.Normalize(ctx, amount),
		Category:    models.CategoryInvestment,
		AccountKind: models.AccountKindInvestment,
		RawJSON:     string(raw),
	}, true
}

func (r *Reconciler) dividendTransaction(ctx context.Context, normalizer *rates.Normalizer, currency string, d brokerage.Dividend) (models.Transaction, bool) {
	date, ok := parseTimestampDay(d.PaidOn)
	if !ok {
		r.log.WithField(logging.FieldReason, "bad dividend date").Warn("Dropping brokerage dividend")
		return models.Transaction{}, false
	}

	id := "div_" + d.Reference
	if d.Reference == "" {
		id = "div_" + uuid.NewString()
	}
	raw, _ := json.Marshal(d)

	return models.Transaction{
		ID:          id,
		AccountID:   BrokerageAccountID,
		Date:        date,
		Description: "Dividend: " + d.Ticker,
		Amount:      normalizer.Normalize(ctx, models.NewMoneyFromFloat(d.Amount, currency)),
		Category:    models.CategoryDividend,
		AccountKind: models.AccountKindInvestment,
		RawJSON:     string(raw),
	}, true
}

// parseTimestampDay extracts the calendar day from an upstream timestamp
// such as "2026-08-10T14:30:00.000Z".
func parseTimestampDay(ts string) (time.Time, bool) {
	if len(ts) < 10 {
		return time.Time{}, false
	}
	day, err := time.Parse("2006-01-02", ts[:10])
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}
