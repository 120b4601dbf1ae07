package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/banksim/bank-account-ledger/internal/cards"
	"github.com/banksim/bank-account-ledger/internal/config"
	"github.com/banksim/bank-account-ledger/internal/events/kafka"
	"github.com/banksim/bank-account-ledger/internal/events/logpub"
	"github.com/banksim/bank-account-ledger/internal/interfaces"
	"github.com/banksim/bank-account-ledger/internal/ledger"
	"github.com/banksim/bank-account-ledger/internal/logger"
	"github.com/banksim/bank-account-ledger/internal/models"
	"github.com/banksim/bank-account-ledger/internal/scheduler"
	"github.com/banksim/bank-account-ledger/internal/storage/memory"
	"github.com/banksim/bank-account-ledger/internal/storage/postgres"
	"github.com/banksim/bank-account-ledger/internal/support"
)

const scheduleTimeLayout = "2006-01-02 15:04:05"

type app struct {
	ledger    *ledger.Ledger
	scheduler *scheduler.Scheduler
	cards     *cards.Manager
	support   *support.Desk
	in        *bufio.Scanner
	log       zerolog.Logger
}

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load configuration")
	}

	var store interfaces.JournalStore
	switch cfg.JournalBackend {
	case "postgres":
		pg, err := postgres.Open(cfg.PostgresDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("connect to postgres journal")
		}
		defer pg.Close()
		store = pg
	default:
		store = memory.NewJournalStore()
	}

	var publisher interfaces.EventPublisher
	switch cfg.EventBackend {
	case "kafka":
		kp := kafka.NewPublisher(cfg.KafkaBrokers)
		defer kp.Close()
		publisher = kp
	default:
		publisher = logpub.NewPublisher(log)
	}

	ledgerService := ledger.NewLedger(store, publisher, log)
	ledgerService.SetLowBalanceThreshold(cfg.LowBalanceThreshold)

	sched := scheduler.New(ledgerService, log)
	defer sched.Stop()

	a := &app{
		ledger:    ledgerService,
		scheduler: sched,
		cards:     cards.NewManager(),
		support:   support.NewDesk(),
		in:        bufio.NewScanner(os.Stdin),
		log:       log,
	}
	a.run()
}

func (a *app) run() {
	for {
		fmt.Println("\n--- Bank Account Management System ---")
		fmt.Println("1. Create Account")
		fmt.Println("2. Deposit")
		fmt.Println("3. Withdraw")
		fmt.Println("4. Check Balance")
		fmt.Println("5. Schedule Transaction")
		fmt.Println("6. Manage Card")
		fmt.Println("7. Customer Support")
		fmt.Println("8. Show Alerts")
		fmt.Println("9. Show Transaction Journal")
		fmt.Println("10. Exit")

		choice, ok := a.promptInt("Enter your choice: ")
		if !ok {
			return
		}

		switch choice {
		case 1:
			a.createAccount()
		case 2:
			a.transact(ledgerDeposit)
		case 3:
			a.transact(ledgerWithdraw)
		case 4:
			a.checkBalance()
		case 5:
			a.scheduleTransaction()
		case 6:
			a.manageCard()
		case 7:
			a.customerSupport()
		case 8:
			a.showAlerts()
		case 9:
			a.showJournal()
		case 10:
			fmt.Println("Exiting the system.")
			return
		default:
			fmt.Println("Invalid choice.")
		}
	}
}

type ledgerOp int

const (
	ledgerDeposit ledgerOp = iota
	ledgerWithdraw
)

func (a *app) createAccount() {
	id, ok := a.promptInt("Enter new account number: ")
	if !ok {
		return
	}
	if _, err := a.ledger.CreateAccount(id); err != nil {
		a.report(err)
		return
	}
	fmt.Printf("Account created successfully. Account number: %d\n", id)
}

func (a *app) transact(op ledgerOp) {
	id, ok := a.promptInt("Enter account number: ")
	if !ok {
		return
	}
	currency, ok := a.prompt("Enter currency: ")
	if !ok {
		return
	}
	amount, ok := a.promptDecimal("Enter amount: ")
	if !ok {
		return
	}

	var balance decimal.Decimal
	var err error
	if op == ledgerDeposit {
		balance, err = a.ledger.Deposit(context.Background(), id, currency, amount)
	} else {
		balance, err = a.ledger.Withdraw(context.Background(), id, currency, amount)
	}
	if err != nil {
		a.report(err)
		return
	}

	verb := "Deposit"
	if op == ledgerWithdraw {
		verb = "Withdrawal"
	}
	fmt.Printf("%s successful. Current balance (%s): %s\n", verb, currency, balance)
}

func (a *app) checkBalance() {
	id, ok := a.promptInt("Enter account number: ")
	if !ok {
		return
	}
	currency, ok := a.prompt("Enter currency: ")
	if !ok {
		return
	}
	balance, err := a.ledger.Balance(id, currency)
	if err != nil {
		a.report(err)
		return
	}
	fmt.Printf("Current balance (%s): %s\n", currency, balance)
}

func (a *app) scheduleTransaction() {
	id, ok := a.promptInt("Enter account number: ")
	if !ok {
		return
	}
	if _, err := a.ledger.Account(id); err != nil {
		a.report(err)
		return
	}

	kindStr, ok := a.prompt("Enter transaction type (deposit/withdraw): ")
	if !ok {
		return
	}
	var kind models.Kind
	switch strings.ToLower(kindStr) {
	case "deposit":
		kind = models.Deposit
	case "withdraw":
		kind = models.Withdraw
	default:
		fmt.Println("Invalid transaction type.")
		return
	}

	currency, ok := a.prompt("Enter currency: ")
	if !ok {
		return
	}
	amount, ok := a.promptDecimal("Enter amount: ")
	if !ok {
		return
	}
	dateStr, ok := a.prompt("Enter date (yyyy-MM-dd HH:mm:ss): ")
	if !ok {
		return
	}
	fireAt, err := time.ParseInLocation(scheduleTimeLayout, dateStr, time.Local)
	if err != nil {
		fmt.Println("Invalid date format.")
		return
	}

	if _, err := a.scheduler.Schedule(id, kind, currency, amount, fireAt); err != nil {
		a.report(err)
		return
	}
	fmt.Printf("Transaction scheduled for: %s\n", fireAt.Format(scheduleTimeLayout))
}

func (a *app) manageCard() {
	id, ok := a.promptInt("Enter account number: ")
	if !ok {
		return
	}
	fmt.Println("1. Activate Card")
	fmt.Println("2. Block Card")
	fmt.Println("3. Order Replacement")
	choice, ok := a.promptInt("Enter your choice: ")
	if !ok {
		return
	}

	switch choice {
	case 1:
		a.cards.Activate(id)
		fmt.Printf("Card activated for account number: %d\n", id)
	case 2:
		a.cards.Block(id)
		fmt.Printf("Card blocked for account number: %d\n", id)
	case 3:
		a.cards.OrderReplacement(id)
		fmt.Printf("Replacement card ordered for account number: %d\n", id)
	default:
		fmt.Println("Invalid choice.")
	}
}

func (a *app) customerSupport() {
	fmt.Println("1. Create Support Ticket")
	fmt.Println("2. Show Support Tickets")
	choice, ok := a.promptInt("Enter your choice: ")
	if !ok {
		return
	}

	switch choice {
	case 1:
		issue, ok := a.prompt("Enter your issue: ")
		if !ok {
			return
		}
		ticket := a.support.Open(issue)
		fmt.Printf("Support ticket created: %s\n", ticket.Issue)
	case 2:
		fmt.Println("Support tickets:")
		for _, t := range a.support.All() {
			fmt.Println(t.Issue)
		}
	default:
		fmt.Println("Invalid choice.")
	}
}

func (a *app) showAlerts() {
	id, ok := a.promptInt("Enter account number: ")
	if !ok {
		return
	}
	alerts, err := a.ledger.Alerts(id)
	if err != nil {
		a.report(err)
		return
	}
	for _, alert := range alerts {
		fmt.Println(alert)
	}
}

func (a *app) showJournal() {
	id, ok := a.promptInt("Enter account number: ")
	if !ok {
		return
	}
	entries, err := a.ledger.JournalEntries(id)
	if err != nil {
		a.report(err)
		return
	}
	for _, e := range entries {
		fmt.Printf("%s  %s %s  (%s)\n", e.CreatedAt.Format(scheduleTimeLayout), e.Amount, e.Currency, e.ID)
	}
}

// report maps domain errors to the operator messages of the original menu.
func (a *app) report(err error) {
	switch {
	case errors.Is(err, ledger.ErrDuplicateAccount):
		fmt.Println("Account number already exists. Please choose a different number.")
	case errors.Is(err, ledger.ErrAccountNotFound):
		fmt.Println("Account not found.")
	case errors.Is(err, ledger.ErrInvalidAmount):
		fmt.Println("Amount must be positive.")
	case errors.Is(err, ledger.ErrInsufficientFunds):
		fmt.Println("Insufficient balance.")
	default:
		a.log.Error().Err(err).Msg("operation failed")
	}
}

func (a *app) prompt(label string) (string, bool) {
	fmt.Print(label)
	if !a.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(a.in.Text()), true
}

func (a *app) promptInt(label string) (int, bool) {
	for {
		text, ok := a.prompt(label)
		if !ok {
			return 0, false
		}
		n, err := strconv.Atoi(text)
		if err != nil {
			fmt.Println("Please enter a number.")
			continue
		}
		return n, true
	}
}

func (a *app) promptDecimal(label string) (decimal.Decimal, bool) {
	for {
		text, ok := a.prompt(label)
		if !ok {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(text)
		if err != nil {
			fmt.Println("Please enter a valid amount.")
			continue
		}
		return d, true
	}
}
