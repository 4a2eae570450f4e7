package service

import (
	"github.com/budgetbook/budgetbook/internal/api"
	"github.com/budgetbook/budgetbook/internal/database/repository"
)

func accountRow(a api.Account) repository.Account {
	return repository.Account{
		ID:        a.ID,
		UserID:    a.UserID,
		BankName:  a.BankName,
		Alias:     a.Alias,
		Balance:   a.Balance,
		CreatedAt: a.CreatedAt.Time,
		UpdatedAt: a.UpdatedAt.Time,
	}
}

func accountFromRow(r repository.Account) api.Account {
	return api.Account{
		ID:        r.ID,
		UserID:    r.UserID,
		BankName:  r.BankName,
		Alias:     r.Alias,
		Balance:   r.Balance,
		CreatedAt: api.NewDateTime(r.CreatedAt),
		UpdatedAt: api.NewDateTime(r.UpdatedAt),
	}
}

func categoryRow(c api.Category) repository.Category {
	return repository.Category{ID: c.ID, Name: c.Name, Type: string(c.Type), Icon: c.Icon}
}

func categoryFromRow(r repository.Category) api.Category {
	return api.Category{ID: r.ID, Name: r.Name, Type: api.TransactionType(r.Type), Icon: r.Icon}
}

func transactionRow(t api.Transaction) repository.Transaction {
	return repository.Transaction{
		ID:              t.ID,
		AccountID:       t.AccountID,
		AccountAlias:    t.AccountAlias,
		AccountBankName: t.AccountBankName,
		Type:            string(t.Type),
		Amount:          t.Amount,
		CategoryID:      t.CategoryID,
		CategoryName:    t.CategoryName,
		Memo:            t.Memo,
		Date:            t.TransactionDate.Time,
	}
}

func transactionFromRow(r repository.Transaction) api.Transaction {
	return api.Transaction{
		ID:              r.ID,
		AccountID:       r.AccountID,
		AccountAlias:    r.AccountAlias,
		AccountBankName: r.AccountBankName,
		Type:            api.TransactionType(r.Type),
		Amount:          r.Amount,
		CategoryID:      r.CategoryID,
		CategoryName:    r.CategoryName,
		Memo:            r.Memo,
		TransactionDate: api.NewDateTime(r.Date),
	}
}

func mapSlice[T, U any](in []T, f func(T) U) []U {
	out := make([]U, len(in))
	for i, v := range in {
		out[i] = f(v)
	}
	return out
}
