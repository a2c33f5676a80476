package wagering

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/fastprodman/wagerledger/internal/ledger"
)

func (s *Service) Meta(ctx context.Context) (ledger.Meta, error) {
	var meta ledger.Meta

	err := s.read(ctx, func(st *ledger.State) error {
		meta = st.Meta()
		return nil
	})

	return meta, err
}

// EmergencyPanic toggles the panic flag and returns its new value.
func (s *Service) EmergencyPanic(ctx context.Context, caller string) (bool, error) {
	var on bool

	err := s.mutate(ctx, func(st *ledger.State) error {
		var err error
		on, err = st.EmergencyPanic(caller)

		return err
	})
	if err != nil {
		return false, err
	}

	slog.Warn("panic button toggled", "panic", on, "caller", caller)

	return on, nil
}

func (s *Service) UpdateOwner(ctx context.Context, caller, newOwner string) error {
	err := s.mutate(ctx, func(st *ledger.State) error {
		return st.UpdateOwner(caller, newOwner)
	})
	if err != nil {
		return err
	}

	slog.Info("owner updated", "owner_id", newOwner)

	return nil
}

func (s *Service) RegisterGame(ctx context.Context, caller string, req ledger.NewGame) (ledger.PartnerGame, error) {
	var g ledger.PartnerGame

	err := s.mutate(ctx, func(st *ledger.State) error {
		created, err := st.RegisterGame(caller, req)
		if err != nil {
			return err
		}

		g = *created

		return nil
	})
	if err != nil {
		return ledger.PartnerGame{}, err
	}

	slog.Info("game registered", "game_code", g.Code, "partner_owner", g.PartnerOwner, "token_contract", g.TokenContract)

	return g, nil
}

func (s *Service) AlterPartner(ctx context.Context, caller, code string, upd ledger.GameUpdate) (ledger.PartnerGame, error) {
	var g ledger.PartnerGame

	err := s.mutate(ctx, func(st *ledger.State) error {
		altered, err := st.AlterPartner(caller, code, upd)
		if err != nil {
			return err
		}

		g = *altered

		return nil
	})
	if err != nil {
		return ledger.PartnerGame{}, err
	}

	slog.Info("game altered", "game_code", code, "blocked", g.Blocked)

	return g, nil
}

func (s *Service) ViewPartnerData(ctx context.Context, code string) (ledger.PartnerGame, error) {
	var g ledger.PartnerGame

	err := s.read(ctx, func(st *ledger.State) error {
		var err error
		g, err = st.ViewPartnerData(code)

		return err
	})

	return g, err
}

// Games lists every registered game ordered by code.
func (s *Service) Games(ctx context.Context) ([]ledger.PartnerGame, error) {
	var out []ledger.PartnerGame

	err := s.read(ctx, func(st *ledger.State) error {
		for _, code := range st.Games().Codes() {
			g, err := st.ViewPartnerData(code)
			if err != nil {
				return err
			}

			out = append(out, g)
		}

		return nil
	})

	return out, err
}

func (s *Service) GetCredits(ctx context.Context, token, account string) (decimal.Decimal, error) {
	var balance decimal.Decimal

	err := s.read(ctx, func(st *ledger.State) error {
		var err error
		balance, err = st.GetCredits(token, account)

		return err
	})

	return balance, err
}

func (s *Service) Play(ctx context.Context, caller, code string, betSize decimal.Decimal, odds int64, betType string) (ledger.Outcome, error) {
	var out ledger.Outcome

	err := s.mutate(ctx, func(st *ledger.State) error {
		o, err := st.Play(caller, code, betSize, odds, betType)
		if err != nil {
			return err
		}

		out = *o

		return nil
	})
	if err != nil {
		s.metrics.Rejected.Inc(1)
		slog.Debug("play rejected", "account_id", caller, "game_code", code, "error", err)

		return ledger.Outcome{}, err
	}

	s.metrics.Plays.Inc(1)

	if out.Won {
		s.metrics.Wins.Inc(1)
	} else {
		s.metrics.Losses.Inc(1)
	}

	slog.Info("play",
		"account_id", caller,
		"game_code", code,
		"bet_size", out.BetSize.String(),
		"odds", odds,
		"bet_type", betType,
		"won", out.Won,
		"payout", out.Payout.String(),
	)

	return out, nil
}

func (s *Service) Transfer(ctx context.Context, id string) (ledger.Transfer, error) {
	var t ledger.Transfer

	err := s.read(ctx, func(st *ledger.State) error {
		var err error
		t, err = st.Transfer(id)

		return err
	})

	return t, err
}
