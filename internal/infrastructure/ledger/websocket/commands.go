package wsledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/casinocoin/cscwalletd/internal/core/ports"
	"github.com/casinocoin/cscwalletd/pkg/cscutil"
)

func (c *client) GetAccountInfo(
	ctx context.Context, address string,
) (*ports.AccountInfo, error) {
	raw, err := c.request(ctx, map[string]interface{}{
		"command":      "account_info",
		"account":      address,
		"ledger_index": "validated",
	})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Status string `json:"status"`
		Error  string `json:"error"`
		Result struct {
			AccountData struct {
				Balance           string `json:"Balance"`
				Sequence          uint32 `json:"Sequence"`
				OwnerCount        uint32 `json:"OwnerCount"`
				PreviousTxnID     string `json:"PreviousTxnID"`
				PreviousTxnLgrSeq int64  `json:"PreviousTxnLgrSeq"`
			} `json:"account_data"`
		} `json:"result"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrTransient, err)
	}
	if resp.Status != "success" {
		if resp.Error == "actNotFound" {
			return nil, ports.ErrAccountNotFound
		}
		return nil, fmt.Errorf("%w: %s", ports.ErrTransient, resp.Error)
	}

	balance, err := cscutil.DropsToCSC(resp.Result.AccountData.Balance)
	if err != nil {
		return nil, fmt.Errorf("malformed account balance: %w", err)
	}
	return &ports.AccountInfo{
		CSCBalance:   balance,
		Sequence:     resp.Result.AccountData.Sequence,
		OwnerCount:   resp.Result.AccountData.OwnerCount,
		LastTxID:     resp.Result.AccountData.PreviousTxnID,
		LastTxLedger: resp.Result.AccountData.PreviousTxnLgrSeq,
	}, nil
}

func (c *client) GetBalances(
	ctx context.Context, address string,
) ([]ports.Balance, error) {
	info, err := c.GetAccountInfo(ctx, address)
	if err != nil {
		return nil, err
	}
	balances := []ports.Balance{{Currency: "CSC", Value: info.CSCBalance}}

	lines, err := c.GetTrustlines(ctx, address)
	if err != nil {
		return nil, err
	}
	for _, line := range lines {
		balances = append(balances, ports.Balance{
			Currency:     line.Currency,
			Value:        line.Balance,
			Counterparty: line.Counterparty,
		})
	}
	return balances, nil
}

func (c *client) GetTrustlines(
	ctx context.Context, address string,
) ([]ports.Trustline, error) {
	raw, err := c.request(ctx, map[string]interface{}{
		"command":      "account_lines",
		"account":      address,
		"ledger_index": "validated",
	})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Status string `json:"status"`
		Error  string `json:"error"`
		Result struct {
			Lines []struct {
				Account  string `json:"account"`
				Currency string `json:"currency"`
				Balance  string `json:"balance"`
				Limit    string `json:"limit"`
			} `json:"lines"`
		} `json:"result"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrTransient, err)
	}
	if resp.Status != "success" {
		if resp.Error == "actNotFound" {
			return nil, ports.ErrAccountNotFound
		}
		return nil, fmt.Errorf("%w: %s", ports.ErrTransient, resp.Error)
	}

	lines := make([]ports.Trustline, 0, len(resp.Result.Lines))
	for _, line := range resp.Result.Lines {
		lines = append(lines, ports.Trustline{
			Currency:     line.Currency,
			Counterparty: line.Account,
			Balance:      line.Balance,
			Limit:        line.Limit,
		})
	}
	return lines, nil
}

func (c *client) GetTransactions(
	ctx context.Context, address string, opts ports.GetTransactionsOpts,
) ([]ports.HistoryTx, error) {
	raw, err := c.request(ctx, map[string]interface{}{
		"command":          "account_tx",
		"account":          address,
		"ledger_index_min": -1,
		"ledger_index_max": -1,
		"forward":          opts.EarliestFirst,
	})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Status string `json:"status"`
		Error  string `json:"error"`
		Result struct {
			Transactions []struct {
				Validated bool            `json:"validated"`
				Tx        json.RawMessage `json:"tx"`
				Meta      json.RawMessage `json:"meta"`
			} `json:"transactions"`
		} `json:"result"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrTransient, err)
	}
	if resp.Status != "success" {
		if resp.Error == "actNotFound" {
			return nil, ports.ErrAccountNotFound
		}
		return nil, fmt.Errorf("%w: %s", ports.ErrTransient, resp.Error)
	}

	history := make([]ports.HistoryTx, 0, len(resp.Result.Transactions))
	for i, record := range resp.Result.Transactions {
		if !record.Validated {
			continue
		}
		entry, err := decodeHistoryTx(record.Tx, record.Meta, i)
		if err != nil {
			return nil, err
		}
		if entry != nil {
			history = append(history, *entry)
		}
	}
	return history, nil
}

func (c *client) Submit(
	ctx context.Context, txBlob string,
) (string, error) {
	raw, err := c.request(ctx, map[string]interface{}{
		"command": "submit",
		"tx_blob": txBlob,
	})
	if err != nil {
		return "", err
	}

	var resp struct {
		Status string `json:"status"`
		Error  string `json:"error"`
		Result struct {
			EngineResult        string `json:"engine_result"`
			EngineResultMessage string `json:"engine_result_message"`
		} `json:"result"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", ports.ErrTransient, err)
	}
	if resp.Status != "success" {
		return "", fmt.Errorf("%w: %s", ports.ErrTransient, resp.Error)
	}
	return resp.Result.EngineResult, nil
}
