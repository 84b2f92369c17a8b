package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/amirasaad/bankcore/pkg/config"
	"github.com/amirasaad/bankcore/pkg/domain"
	"github.com/amirasaad/bankcore/pkg/domain/account"
	"github.com/amirasaad/bankcore/pkg/dto"
	"github.com/amirasaad/bankcore/pkg/money"
	accountsvc "github.com/amirasaad/bankcore/pkg/service/account"
	"github.com/amirasaad/bankcore/pkg/service/transaction"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const usage = `Commands:
  whoami                                   show the acting user
  user [uuid]                              switch to a new or given user
  open <type> <initial> [currency]         open an account (Savings, Checking, BusinessChecking, MoneyMarket)
  deposit <account> <amount> <description...>
  withdraw <account> <amount> <description...>
  transfer <from> <to> <amount> <description...>
  status <account> <Active|Inactive|Frozen|Closed>
  show <account>                           account details
  accounts [all]                           accounts of the acting user, or every account
  history <account>                        ledger entries, newest first
  summary <account>                        totals per transaction type
  tx <reference>                           one ledger entry
  help
  quit`

var errQuit = errors.New("quit")

type shell struct {
	accounts *accountsvc.Service
	engine   *transaction.Service
	actor    uuid.UUID
	out      io.Writer

	ok   *color.Color
	fail *color.Color
	info *color.Color
}

func newShell(deps config.Deps, out io.Writer) *shell {
	return &shell{
		accounts: accountsvc.NewService(deps),
		engine:   transaction.NewService(deps),
		actor:    uuid.New(),
		out:      out,
		ok:       color.New(color.FgGreen),
		fail:     color.New(color.FgRed, color.Bold),
		info:     color.New(color.FgCyan),
	}
}

// Run reads one command per line from in until EOF, quit or ctx is done.
func (s *shell) Run(ctx context.Context, in io.Reader) error {
	s.info.Fprintf(s.out, "bankcore shell. Acting as %s. Type help for commands.\n", s.actor)
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}
		err := s.exec(ctx, strings.Fields(scanner.Text()))
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			s.fail.Fprintf(s.out, "error: %s\n", describe(err))
		}
	}
}

func (s *shell) exec(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(args[0]), args[1:]
	switch cmd {
	case "quit", "exit":
		return errQuit
	case "help":
		fmt.Fprintln(s.out, usage)
		return nil
	case "whoami":
		fmt.Fprintln(s.out, s.actor)
		return nil
	case "user":
		return s.switchUser(args)
	case "open":
		return s.open(ctx, args)
	case "deposit":
		return s.deposit(ctx, args)
	case "withdraw":
		return s.withdraw(ctx, args)
	case "transfer":
		return s.transfer(ctx, args)
	case "status":
		return s.status(ctx, args)
	case "show":
		return s.show(ctx, args)
	case "accounts":
		return s.list(ctx, args)
	case "history":
		return s.history(ctx, args)
	case "summary":
		return s.summary(ctx, args)
	case "tx":
		return s.transaction(ctx, args)
	default:
		return fmt.Errorf("unknown command %q, type help", cmd)
	}
}

func (s *shell) switchUser(args []string) error {
	if len(args) == 0 {
		s.actor = uuid.New()
	} else {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid user id: %w", err)
		}
		s.actor = id
	}
	s.info.Fprintf(s.out, "Acting as %s\n", s.actor)
	return nil
}

func (s *shell) open(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: open <type> <initial> [currency]")
	}
	initial, err := money.Parse(args[1])
	if err != nil {
		return err
	}
	cmd := dto.AccountCreate{
		UserID:         s.actor,
		AccountType:    args[0],
		InitialDeposit: initial,
		ActorID:        s.actor,
	}
	if len(args) > 2 {
		cmd.Currency = args[2]
	}
	if err := dto.Validate(cmd); err != nil {
		return err
	}
	acct, err := s.accounts.CreateAccount(ctx, cmd)
	if err != nil {
		return err
	}
	s.ok.Fprintf(s.out, "Opened %s account %s with balance %s %s\n",
		acct.AccountType, acct.AccountNumber, acct.Balance, acct.Currency)
	return nil
}

func (s *shell) deposit(ctx context.Context, args []string) error {
	number, amount, desc, err := movementArgs("deposit", args)
	if err != nil {
		return err
	}
	cmd := dto.DepositCommand{AccountNumber: number, Amount: amount, Description: desc, ActorID: s.actor}
	if err := dto.Validate(cmd); err != nil {
		return err
	}
	tx, err := s.engine.Deposit(ctx, cmd)
	if err != nil {
		return err
	}
	s.ok.Fprintf(s.out, "Deposited %s to %s. Balance %s -> %s (ref %s)\n",
		tx.Amount, tx.AccountNumber, tx.BalanceBefore, tx.BalanceAfter, tx.Reference)
	return nil
}

func (s *shell) withdraw(ctx context.Context, args []string) error {
	number, amount, desc, err := movementArgs("withdraw", args)
	if err != nil {
		return err
	}
	cmd := dto.WithdrawCommand{AccountNumber: number, Amount: amount, Description: desc, ActorID: s.actor}
	if err := dto.Validate(cmd); err != nil {
		return err
	}
	tx, err := s.engine.Withdraw(ctx, cmd)
	if err != nil {
		return err
	}
	s.ok.Fprintf(s.out, "Withdrew %s from %s. Balance %s -> %s (ref %s)\n",
		tx.Amount, tx.AccountNumber, tx.BalanceBefore, tx.BalanceAfter, tx.Reference)
	return nil
}

func (s *shell) transfer(ctx context.Context, args []string) error {
	if len(args) < 4 {
		return errors.New("usage: transfer <from> <to> <amount> <description...>")
	}
	amount, err := money.Parse(args[2])
	if err != nil {
		return err
	}
	cmd := dto.TransferCommand{
		FromAccountNumber: strings.ToUpper(args[0]),
		ToAccountNumber:   strings.ToUpper(args[1]),
		Amount:            amount,
		Description:       strings.Join(args[3:], " "),
		ActorID:           s.actor,
	}
	if err := dto.Validate(cmd); err != nil {
		return err
	}
	debit, credit, err := s.engine.Transfer(ctx, cmd)
	if err != nil {
		return err
	}
	s.ok.Fprintf(s.out, "Transferred %s from %s (%s -> %s) to %s (%s -> %s)\n",
		debit.Amount,
		debit.AccountNumber, debit.BalanceBefore, debit.BalanceAfter,
		credit.AccountNumber, credit.BalanceBefore, credit.BalanceAfter)
	return nil
}

func (s *shell) status(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: status <account> <status>")
	}
	acct, err := s.accounts.GetAccountByNumber(ctx, strings.ToUpper(args[0]))
	if err != nil {
		return err
	}
	if _, err := s.accounts.UpdateStatus(ctx, acct.ID, account.Status(args[1]), s.actor); err != nil {
		return err
	}
	s.ok.Fprintf(s.out, "Account %s is now %s\n", acct.AccountNumber, args[1])
	return nil
}

func (s *shell) show(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: show <account>")
	}
	acct, err := s.accounts.GetAccountByNumber(ctx, strings.ToUpper(args[0]))
	if err != nil {
		return err
	}
	s.printAccount(acct)
	return nil
}

func (s *shell) list(ctx context.Context, args []string) error {
	var (
		accts []*dto.AccountRead
		err   error
	)
	if len(args) > 0 && args[0] == "all" {
		accts, err = s.accounts.GetAllAccounts(ctx)
	} else {
		accts, err = s.accounts.GetUserAccounts(ctx, s.actor)
	}
	if err != nil {
		return err
	}
	if len(accts) == 0 {
		fmt.Fprintln(s.out, "No accounts")
	}
	for _, a := range accts {
		s.printAccount(a)
	}
	return nil
}

func (s *shell) history(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: history <account>")
	}
	txs, err := s.engine.GetAccountTransactions(ctx, strings.ToUpper(args[0]), dto.TransactionFilter{})
	if err != nil {
		return err
	}
	if len(txs) == 0 {
		fmt.Fprintln(s.out, "No transactions")
	}
	for _, tx := range txs {
		s.printTransaction(tx)
	}
	return nil
}

func (s *shell) summary(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: summary <account>")
	}
	sum, err := s.engine.GetAccountSummary(ctx, strings.ToUpper(args[0]), dto.TransactionFilter{})
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%s: deposits %s, withdrawals %s, transfers in %s, transfers out %s, net %s (%d entries)\n",
		sum.AccountNumber, sum.TotalDeposits, sum.TotalWithdrawals,
		sum.TotalTransferIn, sum.TotalTransferOut, sum.NetChange, sum.Count)
	return nil
}

func (s *shell) transaction(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: tx <reference>")
	}
	tx, err := s.engine.GetTransaction(ctx, strings.ToUpper(args[0]))
	if err != nil {
		return err
	}
	s.printTransaction(tx)
	return nil
}

func (s *shell) printAccount(a *dto.AccountRead) {
	fmt.Fprintf(s.out, "%s  %-16s %12s %s  %-8s owner=%s\n",
		s.info.Sprint(a.AccountNumber), a.AccountType, a.Balance, a.Currency, a.Status, a.UserID)
}

func (s *shell) printTransaction(tx *dto.TransactionRead) {
	line := fmt.Sprintf("%s  %s  %-11s %10s  %10s -> %-10s %s",
		tx.CreatedAt.Format("2006-01-02 15:04:05"), tx.Reference, tx.Type,
		tx.Amount, tx.BalanceBefore, tx.BalanceAfter, tx.Description)
	if tx.RelatedAccountNumber != "" {
		line += " [" + tx.RelatedAccountNumber + "]"
	}
	fmt.Fprintln(s.out, line)
}

func movementArgs(name string, args []string) (number string, amount decimal.Decimal, desc string, err error) {
	if len(args) < 3 {
		return "", money.Zero, "", fmt.Errorf("usage: %s <account> <amount> <description...>", name)
	}
	amount, err = money.Parse(args[1])
	if err != nil {
		return "", money.Zero, "", err
	}
	return strings.ToUpper(args[0]), amount, strings.Join(args[2:], " "), nil
}

// describe turns engine errors into the messages shown to the operator.
func describe(err error) string {
	var (
		insufficient *account.InsufficientFundsError
		conflict     *account.ConflictError
	)
	switch {
	case errors.As(err, &insufficient):
		return fmt.Sprintf("Insufficient funds. Available balance: %s, requested: %s",
			money.Format(insufficient.Balance), money.Format(insufficient.Requested))
	case errors.As(err, &conflict):
		return conflict.Message
	case errors.Is(err, domain.ErrUnauthorized):
		return "You do not own this account"
	default:
		return err.Error()
	}
}
