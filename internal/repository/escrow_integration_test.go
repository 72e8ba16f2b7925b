//go:build integration

package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"
	tcmysql "github.com/testcontainers/testcontainers-go/modules/mysql"
	"golang.org/x/crypto/bcrypt"

	"github.com/ayaznasser/vehicle-registry/internal/model"
)

// newTestDB starts a MySQL container with the registry schema applied
// and returns an open connection pool. The container and the pool are
// torn down when the test finishes.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcmysql.Run(ctx, "mysql:8.0",
		tcmysql.WithDatabase("vehicle_registry"),
		tcmysql.WithUsername("registry"),
		tcmysql.WithPassword("registry"),
		tcmysql.WithScripts(filepath.Join("..", "..", "migrations", "schema.sql")),
	)
	if err != nil {
		t.Fatalf("failed to start mysql container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "parseTime=true")
	if err != nil {
		t.Fatalf("failed to get mysql connection string: %v", err)
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open mysql connection: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("failed to ping mysql: %v", err)
	}
	return db
}

// openEscrow runs the request-creation transaction the way the handler
// does: vehicle and wallet rows locked, buyer debited, request row
// written, all committed together.
func openEscrow(t *testing.T, db *sql.DB, vehicles *VehicleRepo, wallets *WalletRepo,
	requests *BuyRequestRepo, vin string, buyer, amount uint64) model.BuyRequest {
	t.Helper()
	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	v, err := vehicles.GetByVINForUpdateTx(ctx, tx, vin)
	require.NoError(t, err)
	_, err = wallets.GetForUpdateTx(ctx, tx, buyer)
	require.NoError(t, err)
	require.NoError(t, wallets.DebitTx(ctx, tx, buyer, amount))

	request := model.BuyRequest{
		VIN:             vin,
		BuyerAccountID:  buyer,
		SellerAccountID: v.OwnerAccountID,
		Amount:          amount,
	}
	require.NoError(t, requests.CreateTx(ctx, tx, &request))
	require.NoError(t, tx.Commit())
	return request
}

func TestEscrowLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	accounts := NewAccountRepo(db)
	wallets := NewWalletRepo(db)
	vehicles := NewVehicleRepo(db)
	requests := NewBuyRequestRepo(db)

	const (
		vin           = "1HGBH41JXMN109186"
		price  uint64 = 400
		funded uint64 = 1000
	)

	seller, err := accounts.Create(ctx, "seller@example.com", "secret-pass", bcrypt.MinCost, 0)
	require.NoError(t, err)
	buyer1, err := accounts.Create(ctx, "buyer1@example.com", "secret-pass", bcrypt.MinCost, funded)
	require.NoError(t, err)
	buyer2, err := accounts.Create(ctx, "buyer2@example.com", "secret-pass", bcrypt.MinCost, funded)
	require.NoError(t, err)

	v := model.Vehicle{
		VehicleID:        "GOV-0001",
		VIN:              vin,
		Brand:            "Toyota",
		Model:            "Corolla",
		Year:             2020,
		Color:            "blue",
		EngineNumber:     "ENG-123",
		OwnerAccountID:   seller,
		RegisteredBy:     seller,
		RegistrationDate: time.Now().UTC(),
		InspectionStatus: model.InspectionPending,
	}
	require.NoError(t, vehicles.Create(ctx, &v))
	ok, err := vehicles.SetForSale(ctx, vin, seller, price)
	require.NoError(t, err)
	require.True(t, ok)

	t.Run("create debits each buyer by the escrowed amount", func(t *testing.T) {
		openEscrow(t, db, vehicles, wallets, requests, vin, buyer1, price)
		openEscrow(t, db, vehicles, wallets, requests, vin, buyer2, price)

		for _, buyer := range []uint64{buyer1, buyer2} {
			w, err := wallets.Get(ctx, buyer)
			require.NoError(t, err)
			require.Equal(t, funded-price, w.Balance)
		}
	})

	t.Run("debit never overdraws a wallet", func(t *testing.T) {
		tx, err := db.BeginTx(ctx, nil)
		require.NoError(t, err)
		defer tx.Rollback()
		require.ErrorIs(t, wallets.DebitTx(ctx, tx, buyer1, funded*10), ErrInsufficientFunds)
	})

	t.Run("accept pays the seller and moves ownership in one commit", func(t *testing.T) {
		request, err := requests.GetByVINAndBuyer(ctx, vin, buyer1)
		require.NoError(t, err)

		tx, err := db.BeginTx(ctx, nil)
		require.NoError(t, err)
		defer tx.Rollback()

		locked, err := vehicles.GetByVINForUpdateTx(ctx, tx, vin)
		require.NoError(t, err)
		_, err = requests.GetByVINAndBuyerForUpdateTx(ctx, tx, vin, buyer1)
		require.NoError(t, err)

		marked, err := requests.MarkAcceptedTx(ctx, tx, request.ID)
		require.NoError(t, err)
		require.True(t, marked)
		require.NoError(t, wallets.CreditTx(ctx, tx, seller, request.Amount))
		require.NoError(t, vehicles.TransferOwnershipTx(ctx, tx, locked.ID, buyer1))
		require.NoError(t, tx.Commit())

		sellerWallet, err := wallets.Get(ctx, seller)
		require.NoError(t, err)
		require.Equal(t, price, sellerWallet.Balance)

		got, err := vehicles.GetByVIN(ctx, vin)
		require.NoError(t, err)
		require.Equal(t, buyer1, got.OwnerAccountID)
		require.False(t, got.IsForSale)
		require.Nil(t, got.SalePrice)
		require.Equal(t, uint32(1), got.TransferCount)

		// The settled request stays behind as an audit record.
		settled, err := requests.GetByVINAndBuyer(ctx, vin, buyer1)
		require.NoError(t, err)
		require.Equal(t, model.BuyRequestAccepted, settled.Status)
	})

	t.Run("second accept of a settled request is refused", func(t *testing.T) {
		request, err := requests.GetByVINAndBuyer(ctx, vin, buyer1)
		require.NoError(t, err)

		tx, err := db.BeginTx(ctx, nil)
		require.NoError(t, err)
		defer tx.Rollback()

		marked, err := requests.MarkAcceptedTx(ctx, tx, request.ID)
		require.NoError(t, err)
		require.False(t, marked)
	})

	t.Run("new owner rejects the stale offer with an exact refund", func(t *testing.T) {
		request, err := requests.GetByVINAndBuyer(ctx, vin, buyer2)
		require.NoError(t, err)

		tx, err := db.BeginTx(ctx, nil)
		require.NoError(t, err)
		defer tx.Rollback()

		_, err = vehicles.GetByVINForUpdateTx(ctx, tx, vin)
		require.NoError(t, err)
		_, err = requests.GetByVINAndBuyerForUpdateTx(ctx, tx, vin, buyer2)
		require.NoError(t, err)
		require.NoError(t, wallets.CreditTx(ctx, tx, request.BuyerAccountID, request.Amount))
		require.NoError(t, requests.DeleteTx(ctx, tx, request.ID))
		require.NoError(t, tx.Commit())

		w, err := wallets.Get(ctx, buyer2)
		require.NoError(t, err)
		require.Equal(t, funded, w.Balance)

		_, err = requests.GetByVINAndBuyer(ctx, vin, buyer2)
		require.ErrorIs(t, err, sql.ErrNoRows)
	})

	t.Run("former owner cannot relist after the transfer", func(t *testing.T) {
		ok, err := vehicles.SetForSale(ctx, vin, seller, price)
		require.NoError(t, err)
		require.False(t, ok)

		got, err := vehicles.GetByVIN(ctx, vin)
		require.NoError(t, err)
		require.False(t, got.IsForSale)
		require.Nil(t, got.SalePrice)

		ok, err = vehicles.SetForSale(ctx, vin, buyer1, price)
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = vehicles.CancelSale(ctx, vin, seller)
		require.NoError(t, err)
		require.False(t, ok)

		ok, err = vehicles.CancelSale(ctx, vin, buyer1)
		require.NoError(t, err)
		require.True(t, ok)
	})
}
