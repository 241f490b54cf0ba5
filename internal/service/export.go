package service

import (
	"encoding/csv"
	"io"
	"time"

	"sellmypi/internal/models"
)

// csvHeader matches the admin dashboard export column order.
var csvHeader = []string{
	"Order ID", "Username", "Email", "Phone", "Pi Amount", "USD Value", "INR Value",
	"UPI ID", "Status", "Created At", "Sell Rate USD", "Sell Rate INR",
}

// WriteTransactionsCSV streams the given transactions as CSV.
func WriteTransactionsCSV(w io.Writer, txs []models.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, tx := range txs {
		record := []string{
			tx.ID,
			tx.UserInfo.Username,
			tx.UserInfo.Email,
			tx.UserInfo.Phone,
			tx.PiAmount.String(),
			tx.UsdValue,
			tx.InrValue,
			tx.UpiID,
			string(tx.Status),
			tx.CreatedAt.UTC().Format(time.RFC3339),
			tx.SellRateUsd,
			tx.SellRateInr,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
