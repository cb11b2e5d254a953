// Package mock provides an in-memory chain and file store for tests and
// offline runs. State mutations mirror what the real network would do:
// deposits land in the escrow, approvals set allowances, uploads produce a
// content-addressed piece.
package mock

import (
	"context"
	"io"
	"sync"

	"github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/big"
	"github.com/ipfs/go-cid"
	mh "github.com/multiformats/go-multihash"

	"github.com/filecoin-project/go-filpay/api"
	"github.com/filecoin-project/go-filpay/build"
	"github.com/filecoin-project/go-filpay/types"
)

// Backend implements api.ChainReader, api.ChainWriter and api.FileStore
// against in-memory state.
type Backend struct {
	lk sync.Mutex

	Native big.Int
	Stable big.Int

	Escrow          big.Int
	RateAllowance   big.Int
	LockupAllowance big.Int
	RateUsed        big.Int

	Price api.PriceTable

	// Fault injection.
	ReadErr   error
	PushErr   error
	WaitErr   error
	UploadErr error
	ExitFail  bool

	Pushed  []PushedMsg
	Uploads []RecordedUpload
}

type PushedMsg struct {
	Cid     cid.Cid
	Deposit big.Int
	Rate    big.Int
	Lockup  big.Int
}

type RecordedUpload struct {
	Size uint64
	Opts api.UploadOpts
}

var _ api.ChainReader = (*Backend)(nil)
var _ api.ChainWriter = (*Backend)(nil)
var _ api.FileStore = (*Backend)(nil)

// NewBackend returns a backend with mainnet-shaped pricing and an empty
// account.
func NewBackend() *Backend {
	return &Backend{
		Native: big.Zero(),
		Stable: big.Zero(),

		Escrow:          big.Zero(),
		RateAllowance:   big.Zero(),
		LockupAllowance: big.Zero(),
		RateUsed:        big.Zero(),

		Price: api.PriceTable{
			PricePerTiBPerMonth:  types.MustParseUSDFC("2.5").Atto(),
			MinimumPricePerMonth: types.MustParseUSDFC("0.06").Atto(),
			EpochsPerMonth:       build.EpochsInMonth,
		},
	}
}

func (b *Backend) WalletBalances(ctx context.Context, addr address.Address) (api.WalletBalances, error) {
	b.lk.Lock()
	defer b.lk.Unlock()
	if b.ReadErr != nil {
		return api.WalletBalances{}, b.ReadErr
	}
	return api.WalletBalances{Native: b.Native, Stable: b.Stable}, nil
}

func (b *Backend) PaymentAccount(ctx context.Context, addr address.Address) (api.AccountState, error) {
	b.lk.Lock()
	defer b.lk.Unlock()
	if b.ReadErr != nil {
		return api.AccountState{}, b.ReadErr
	}
	return api.AccountState{
		NativeBalance:   b.Native,
		StableBalance:   b.Stable,
		AvailableFunds:  b.Escrow,
		RateAllowance:   b.RateAllowance,
		LockupAllowance: b.LockupAllowance,
		RateUsed:        b.RateUsed,
	}, nil
}

func (b *Backend) StoragePrice(ctx context.Context) (api.PriceTable, error) {
	b.lk.Lock()
	defer b.lk.Unlock()
	if b.ReadErr != nil {
		return api.PriceTable{}, b.ReadErr
	}
	return b.Price, nil
}

func (b *Backend) PushApproval(ctx context.Context, rate, lockup big.Int) (cid.Cid, error) {
	return b.push(big.Zero(), rate, lockup)
}

func (b *Backend) PushDepositAndApprove(ctx context.Context, amount, rate, lockup big.Int) (cid.Cid, error) {
	return b.push(amount, rate, lockup)
}

func (b *Backend) push(deposit, rate, lockup big.Int) (cid.Cid, error) {
	b.lk.Lock()
	defer b.lk.Unlock()
	if b.PushErr != nil {
		return cid.Undef, b.PushErr
	}

	c := cidOf(append([]byte("msg"), byte(len(b.Pushed))))
	b.Pushed = append(b.Pushed, PushedMsg{Cid: c, Deposit: deposit, Rate: rate, Lockup: lockup})

	if !b.ExitFail {
		if deposit.Sign() > 0 {
			b.Stable = big.Sub(b.Stable, deposit)
			b.Escrow = big.Add(b.Escrow, deposit)
		}
		b.RateAllowance = rate
		b.LockupAllowance = lockup
	}
	return c, nil
}

func (b *Backend) WaitMsg(ctx context.Context, c cid.Cid, confidence uint64) (*api.MsgReceipt, error) {
	b.lk.Lock()
	defer b.lk.Unlock()
	if b.WaitErr != nil {
		return nil, b.WaitErr
	}
	return &api.MsgReceipt{ExitOK: !b.ExitFail, GasUsed: 1_000_000}, nil
}

func (b *Backend) Upload(ctx context.Context, r io.Reader, size uint64, opts api.UploadOpts) (*api.UploadResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	b.lk.Lock()
	defer b.lk.Unlock()
	if b.UploadErr != nil {
		return nil, b.UploadErr
	}

	b.Uploads = append(b.Uploads, RecordedUpload{Size: size, Opts: opts})

	proof := cidOf(append([]byte("proof"), data...))
	return &api.UploadResult{
		PieceCid: cidOf(data),
		ProofMsg: &proof,
		Size:     uint64(len(data)),
	}, nil
}

func cidOf(data []byte) cid.Cid {
	h, err := mh.Sum(data, mh.SHA2_256, -1)
	if err != nil {
		panic(err)
	}
	return cid.NewCidV1(cid.Raw, h)
}
