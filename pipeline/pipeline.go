// Package pipeline runs the four-stage upload flow: balance check,
// conditional payment, file upload, summary. Each stage writes exactly one
// field of the run context and reads only the fields of earlier stages; the
// first failure aborts everything downstream.
package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/filecoin-project/go-address"
	logging "github.com/ipfs/go-log/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"

	"github.com/filecoin-project/go-filpay/accountant"
	"github.com/filecoin-project/go-filpay/api"
	"github.com/filecoin-project/go-filpay/build"
	"github.com/filecoin-project/go-filpay/paymgr"
	"github.com/filecoin-project/go-filpay/pricing"
	"github.com/filecoin-project/go-filpay/types"
)

var log = logging.Logger("pipeline")

// MaxMetadataEntries bounds per-upload metadata.
const MaxMetadataEntries = 4

// UploadRequest is one pipeline invocation.
type UploadRequest struct {
	Path      string
	DatasetID string
	CDN       bool
	Metadata  map[string]string

	PersistDays   uint64
	ThresholdDays uint64

	// AutoFund permits the payment stage to move funds. When unset, a
	// required deposit aborts the run instead of paying.
	AutoFund bool
}

// BalanceSnapshot is stage 1's output.
type BalanceSnapshot struct {
	Wallet  api.WalletBalances
	Account api.AccountState
	Quote   *types.PriceQuote
	Report  *types.SolvencyReport

	NeedsPayment bool
}

// runContext accumulates stage outputs over one request lifetime. It is
// built fresh per Run and discarded at completion; nothing survives across
// invocations.
type runContext struct {
	balance *BalanceSnapshot
	payment *types.PaymentOutcome
	upload  *api.UploadResult
}

// UploadReport is the aggregated result of a run.
type UploadReport struct {
	Succeeded bool          `json:"succeeded"`
	ErrorKind types.ErrKind `json:"errorKind,omitempty"`
	Error     string        `json:"error,omitempty"`

	FileName      string `json:"fileName"`
	FileSizeBytes uint64 `json:"fileSizeBytes"`

	PieceCid   string `json:"pieceCid,omitempty"`
	PaymentCid string `json:"paymentCid,omitempty"`
	ProofCid   string `json:"proofCid,omitempty"`

	Balance *BalanceSnapshot      `json:"balance,omitempty"`
	Payment *types.PaymentOutcome `json:"payment,omitempty"`

	Events []StageEvent `json:"events"`
}

// Pipeline wires the collaborators for upload runs. All dependencies are
// injected; there is no process-wide client state.
type Pipeline struct {
	reader api.ChainReader
	store  api.FileStore
	oracle *pricing.Oracle
	funds  *paymgr.Manager

	wallet address.Address
}

func New(reader api.ChainReader, writer api.ChainWriter, store api.FileStore, wallet address.Address) *Pipeline {
	return &Pipeline{
		reader: reader,
		store:  store,
		oracle: pricing.NewOracle(reader),
		funds:  paymgr.NewManager(writer),
		wallet: wallet,
	}
}

// Run executes the four stages in order. The returned report is always
// non-nil and carries the full ordered event log, including the terminal
// event of a failed stage.
func (p *Pipeline) Run(ctx context.Context, req UploadRequest) *UploadReport {
	rc := &runContext{}
	events := &eventLog{}

	fileName, fileSize, err := p.checkBalance(ctx, req, rc, events)
	if err != nil {
		return abort(fileName, fileSize, rc, events, err)
	}

	if err := p.processPayment(ctx, req, rc, events); err != nil {
		return abort(fileName, fileSize, rc, events, err)
	}

	if err := p.uploadFile(ctx, req, fileSize, rc, events); err != nil {
		return abort(fileName, fileSize, rc, events, err)
	}

	return summarize(fileName, fileSize, rc, events)
}

// checkBalance resolves the file size, fans out the independent chain reads,
// and evaluates solvency. It has no side effects, so a failure here aborts
// the run with nothing to undo.
func (p *Pipeline) checkBalance(ctx context.Context, req UploadRequest, rc *runContext, events *eventLog) (string, uint64, error) {
	if len(req.Metadata) > MaxMetadataEntries {
		return "", 0, types.Errorf(types.KindInvalidInput, "metadata has %d entries, limit is %d", len(req.Metadata), MaxMetadataEntries)
	}
	if req.PersistDays < build.MinPersistenceDays {
		return "", 0, types.Errorf(types.KindInvalidInput, "persistence period of %d days is below the %d-day floor", req.PersistDays, build.MinPersistenceDays)
	}
	if req.ThresholdDays < build.MinNotificationDays {
		return "", 0, types.Errorf(types.KindInvalidInput, "notification threshold of %d days is below the %d-day floor", req.ThresholdDays, build.MinNotificationDays)
	}

	fi, err := os.Stat(req.Path)
	if err != nil {
		return "", 0, types.WrapErr(types.KindInvalidInput, xerrors.Errorf("resolving file %q: %w", req.Path, err))
	}
	if fi.IsDir() || fi.Size() <= 0 {
		return "", 0, types.Errorf(types.KindInvalidInput, "%q is not an uploadable file", req.Path)
	}
	fileName := filepath.Base(req.Path)
	fileSize := uint64(fi.Size())

	events.add(StageCheckBalance, "checking balance for %s (%s)", fileName, humanize.IBytes(fileSize))

	// The three reads are independent and commutative, so they are issued
	// together and joined.
	var (
		wallet  api.WalletBalances
		account api.AccountState
		quote   *types.PriceQuote
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		wallet, err = p.reader.WalletBalances(gctx, p.wallet)
		if err != nil {
			return types.WrapErr(types.KindReadFailed, xerrors.Errorf("reading wallet balances: %w", err))
		}
		return nil
	})
	g.Go(func() error {
		var err error
		account, err = p.reader.PaymentAccount(gctx, p.wallet)
		if err != nil {
			return types.WrapErr(types.KindReadFailed, xerrors.Errorf("reading payment account: %w", err))
		}
		return nil
	})
	g.Go(func() error {
		var err error
		quote, err = p.oracle.Quote(gctx, fileSize)
		return err
	})
	if err := g.Wait(); err != nil {
		return fileName, fileSize, err
	}

	report := accountant.Evaluate(account, quote, req.PersistDays, req.ThresholdDays)

	rc.balance = &BalanceSnapshot{
		Wallet:       wallet,
		Account:      account,
		Quote:        quote,
		Report:       report,
		NeedsPayment: !report.Sufficient,
	}

	if report.Sufficient {
		events.add(StageCheckBalance, "account is solvent: %s of runway at requested capacity", report.DaysLeftAtMaxBurnRate)
	} else {
		events.add(StageCheckBalance, "account needs funding: deposit %s, runway %s", report.DepositNeeded, report.DaysLeftAtMaxBurnRate)
	}
	return fileName, fileSize, nil
}

// processPayment funds the account when stage 1 demanded it. A failure here
// aborts before any upload; funds that already landed stay credited to the
// account for a future retry.
func (p *Pipeline) processPayment(ctx context.Context, req UploadRequest, rc *runContext, events *eventLog) error {
	snap := rc.balance

	if !snap.NeedsPayment {
		rc.payment = &types.PaymentOutcome{Succeeded: true, Skipped: true}
		events.add(StageProcessPayment, "payment skipped, account already sufficient")
		return nil
	}

	if !req.AutoFund {
		return types.Errorf(types.KindInsufficientBalance,
			"deposit of %s required and automatic funding is disabled", snap.Report.DepositNeeded)
	}

	allowancesOK := snap.Report.RateSufficient && snap.Report.LockupSufficient
	outcome, err := p.funds.EnsureFunded(ctx, snap.Report.DepositNeeded.Atto(), allowancesOK)
	rc.payment = outcome
	if err != nil {
		events.add(StageProcessPayment, "payment failed: %s", outcome.Error)
		return err
	}

	if outcome.MsgCid != nil {
		events.add(StageProcessPayment, "funding confirmed in message %s", outcome.MsgCid)
	} else {
		events.add(StageProcessPayment, "allowances confirmed, no funds moved")
	}
	return nil
}

func (p *Pipeline) uploadFile(ctx context.Context, req UploadRequest, fileSize uint64, rc *runContext, events *eventLog) error {
	f, err := os.Open(req.Path)
	if err != nil {
		return types.WrapErr(types.KindInvalidInput, xerrors.Errorf("opening %q: %w", req.Path, err))
	}
	defer f.Close() //nolint:errcheck // file is read-only

	events.add(StageUpload, "uploading %s", humanize.IBytes(fileSize))

	res, err := p.store.Upload(ctx, f, fileSize, api.UploadOpts{
		DatasetID: req.DatasetID,
		CDN:       req.CDN,
		Metadata:  req.Metadata,
	})
	if err != nil {
		return types.WrapErr(types.KindUploadFailed, xerrors.Errorf("uploading %q: %w", req.Path, err))
	}

	rc.upload = res
	events.add(StageUpload, "stored piece %s", res.PieceCid)
	return nil
}

// summarize is pure aggregation over the prior stages. It tolerates any
// optional field being absent and cannot fail on its own.
func summarize(fileName string, fileSize uint64, rc *runContext, events *eventLog) *UploadReport {
	events.add(StageSummary, "upload of %s complete", fileName)
	return buildReport(fileName, fileSize, rc, events)
}

func buildReport(fileName string, fileSize uint64, rc *runContext, events *eventLog) *UploadReport {
	rep := &UploadReport{
		Succeeded:     true,
		FileName:      fileName,
		FileSizeBytes: fileSize,
		Balance:       rc.balance,
		Payment:       rc.payment,
		Events:        events.events,
	}
	if rc.upload != nil {
		rep.PieceCid = rc.upload.PieceCid.String()
		if rc.upload.ProofMsg != nil {
			rep.ProofCid = rc.upload.ProofMsg.String()
		}
	}
	if rc.payment != nil && rc.payment.MsgCid != nil {
		rep.PaymentCid = rc.payment.MsgCid.String()
	}
	return rep
}

func abort(fileName string, fileSize uint64, rc *runContext, events *eventLog, err error) *UploadReport {
	kind := types.Kind(err)
	log.Warnw("pipeline aborted", "kind", kind, "error", err)

	events.add(StageSummary, "pipeline aborted: %s", err)
	rep := buildReport(fileName, fileSize, rc, events)
	rep.Succeeded = false
	rep.ErrorKind = kind
	rep.Error = err.Error()
	return rep
}
