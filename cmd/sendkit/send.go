package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/spf13/cobra"

	"github.com/0xsequence/sendkit/gasfee"
	"github.com/0xsequence/sendkit/sendflow"
	"github.com/ethereum/go-ethereum/common"
)

func init() {
	send := &send{}
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Draft a send transaction and print its wire parameters",
		Args:  cobra.NoArgs,
		RunE:  send.Run,
	}

	cmd.Flags().StringP("from", "f", "", "The sending account address")
	cmd.Flags().StringP("to", "t", "", "The recipient address")
	cmd.Flags().StringP("amount", "a", "0", "The amount to send, in the asset's minimal unit")
	cmd.Flags().String("balance", "0", "The sender's native balance in wei")
	cmd.Flags().String("token", "", "Token contract address for an ERC20 send")
	cmd.Flags().Int("decimals", 18, "Token decimals")
	cmd.Flags().String("token-balance", "0", "Token balance in whole tokens")
	cmd.Flags().Int64("gas-price-gwei", 2, "Gas price estimate in gwei")
	cmd.Flags().Bool("eip1559", false, "Price the transaction with the fee market envelope")
	cmd.Flags().Bool("max", false, "Send the maximum amount instead of --amount")

	rootCmd.AddCommand(cmd)
}

type send struct {
}

// staticSource serves a single gas fee estimate snapshot, so the flow can be
// driven without a node connection.
type staticSource struct {
	estimates gasfee.Estimates
}

func (s *staticSource) FetchEstimates(ctx context.Context) (*gasfee.Estimates, error) {
	est := s.estimates
	return &est, nil
}

// localServices backs the flow with fixed balances and a transaction service
// that just prints what it receives.
type localServices struct {
	tokenBalance *big.Int
}

func (l *localServices) ERC20Balance(ctx context.Context, token sendflow.TokenDetails, owner common.Address) (*big.Int, error) {
	return new(big.Int).Set(l.tokenBalance), nil
}

func (l *localServices) IsCollectibleOwner(ctx context.Context, owner, contract common.Address, tokenID *big.Int) (bool, error) {
	return false, sendflow.ErrOwnershipUnverifiable
}

func (l *localServices) TokenStandard(ctx context.Context, contract, owner common.Address) (sendflow.TokenStandard, error) {
	return sendflow.StandardERC20, nil
}

func (l *localServices) EstimateGasLimit(ctx context.Context, req sendflow.GasLimitRequest) (*big.Int, error) {
	return nil, nil
}

func (l *localServices) EntryName(address string) (string, bool) { return "", false }

func (l *localServices) KnownTokenAddresses() []common.Address { return nil }

func (l *localServices) UserTokens() []sendflow.TokenDetails { return nil }

func (l *localServices) SubmitNewTransaction(ctx context.Context, params sendflow.TxParams, kind sendflow.TxKind, history []sendflow.HistoryEntry) error {
	out, err := json.MarshalIndent(params, "", "  ")
	if err != nil {
		return err
	}
	fmt.Printf("kind: %s\n%s\n", kind, out)
	return nil
}

func (l *localServices) UpdateExistingTransaction(ctx context.Context, id string, params sendflow.TxParams) error {
	return nil
}

func (l *localServices) PendingTransaction(id string) (*sendflow.PendingTransaction, bool) {
	return nil, false
}

func (c *send) Run(cmd *cobra.Command, args []string) error {
	fFrom, err := cmd.Flags().GetString("from")
	if err != nil {
		return err
	}
	fTo, err := cmd.Flags().GetString("to")
	if err != nil {
		return err
	}
	fAmount, err := cmd.Flags().GetString("amount")
	if err != nil {
		return err
	}
	fBalance, err := cmd.Flags().GetString("balance")
	if err != nil {
		return err
	}
	fToken, err := cmd.Flags().GetString("token")
	if err != nil {
		return err
	}
	fDecimals, err := cmd.Flags().GetInt("decimals")
	if err != nil {
		return err
	}
	fTokenBalance, err := cmd.Flags().GetString("token-balance")
	if err != nil {
		return err
	}
	fGasPriceGwei, err := cmd.Flags().GetInt64("gas-price-gwei")
	if err != nil {
		return err
	}
	fEIP1559, err := cmd.Flags().GetBool("eip1559")
	if err != nil {
		return err
	}
	fMax, err := cmd.Flags().GetBool("max")
	if err != nil {
		return err
	}

	if !common.IsHexAddress(fFrom) {
		return errors.New("error: please provide a valid --from account address")
	}
	if !common.IsHexAddress(fTo) {
		return errors.New("error: please provide a valid --to recipient address")
	}
	amount, ok := new(big.Int).SetString(fAmount, 10)
	if !ok {
		return errors.New("error: invalid --amount value")
	}
	balance, ok := new(big.Int).SetString(fBalance, 10)
	if !ok {
		return errors.New("error: invalid --balance value")
	}
	tokenBalance, ok := new(big.Int).SetString(fTokenBalance, 10)
	if !ok {
		return errors.New("error: invalid --token-balance value")
	}

	estimates := gasfee.Estimates{
		Type:   gasfee.EstimateLegacy,
		Medium: gasfee.Level{GasPrice: gasfee.GweiToWei(fGasPriceGwei)},
	}
	if fEIP1559 {
		estimates = gasfee.Estimates{
			Type: gasfee.EstimateFeeMarket,
			Medium: gasfee.Level{
				MaxFeePerGas:         gasfee.GweiToWei(fGasPriceGwei),
				MaxPriorityFeePerGas: gasfee.GweiToWei(1),
			},
		}
	}

	poller, err := gasfee.NewPoller(&staticSource{estimates: estimates})
	if err != nil {
		return err
	}

	services := &localServices{tokenBalance: tokenBalance}
	flow, err := sendflow.NewFlow(sendflow.Services{
		FeeEstimator:   poller,
		LimitEstimator: services,
		Balances:       services,
		AddressBook:    services,
		Transactions:   services,
	}, sendflow.Options{RecipientDebounceInterval: 0})
	if err != nil {
		return err
	}
	defer flow.Reset()

	network := sendflow.NetworkContext{
		ChainID:          big.NewInt(1),
		EIP1559Support:   fEIP1559,
		IsDefaultNetwork: true,
		BlockGasLimit:    big.NewInt(30_000_000),
		NativeTicker:     "ETH",
	}
	account := sendflow.Account{Address: common.HexToAddress(fFrom), Balance: balance}

	var asset *sendflow.Asset
	if fToken != "" {
		if !common.IsHexAddress(fToken) {
			return errors.New("error: invalid --token contract address")
		}
		asset = &sendflow.Asset{
			Kind:    sendflow.AssetToken,
			Balance: tokenBalance,
			Details: &sendflow.TokenDetails{
				Address:  common.HexToAddress(fToken),
				Decimals: fDecimals,
				Standard: sendflow.StandardERC20,
			},
		}
	}

	ctx := context.Background()
	if err := flow.StartNewDraft(ctx, network, account, asset); err != nil {
		return err
	}
	flow.SetRecipient(ctx, fTo, "")
	if fMax {
		flow.ToggleMaxMode(ctx)
	} else {
		flow.SetSendAmount(ctx, amount)
	}
	flow.Wait()

	if !flow.IsValid() {
		draft, _ := flow.CurrentDraft()
		return fmt.Errorf("error: draft is not valid (amount: %q, gas: %q, recipient: %q)",
			draft.Amount.Err, draft.Gas.Err, draft.Recipient.Err)
	}
	return flow.Submit(ctx)
}
