package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHandleMessageWritesAuditLine(t *testing.T) {
	t.Chdir(t.TempDir())

	ev := TransferCompletedEvent{
		EventID:         "9f2c1a34-0000-4000-8000-000000000001",
		VIN:             "1HGBH41JXMN109186",
		VehicleID:       7,
		Brand:           "Toyota",
		Model:           "Corolla",
		SellerAccountID: 10,
		BuyerAccountID:  20,
		AmountPaid:      500,
		TransferType:    TransferTypeEscrow,
		TransferCount:   1,
		CompletedAt:     "2025-06-01T12:00:00Z",
	}
	body, err := json.Marshal(ev)
	require.NoError(t, err)

	require.NoError(t, handleMessage(body))

	data, err := os.ReadFile(filepath.Join("logs", "transfer.log"))
	require.NoError(t, err)
	line := string(data)
	require.Contains(t, line, "vin=1HGBH41JXMN109186")
	require.Contains(t, line, "type=ESCROW")
	require.Contains(t, line, "seller=10")
	require.Contains(t, line, "buyer=20")
	require.Contains(t, line, "amount=500")
}

func TestHandleMessageAppends(t *testing.T) {
	t.Chdir(t.TempDir())

	for _, id := range []string{"a", "b"} {
		body, err := json.Marshal(TransferCompletedEvent{EventID: id, TransferType: TransferTypeDirect})
		require.NoError(t, err)
		require.NoError(t, handleMessage(body))
	}

	data, err := os.ReadFile(filepath.Join("logs", "transfer.log"))
	require.NoError(t, err)
	require.Contains(t, string(data), "event_id=a")
	require.Contains(t, string(data), "event_id=b")
}

func TestHandleMessageRejectsBadPayload(t *testing.T) {
	t.Chdir(t.TempDir())
	require.Error(t, handleMessage([]byte("{not json")))
}
