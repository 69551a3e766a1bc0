package procurement

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribeRequisitionLine(t *testing.T) {
	productID := uuid.New()
	other := uuid.New()

	tests := []struct {
		name    string
		desc    string
		sellers []SupplierInfo
		want    string
	}{
		{
			name:    "code and name",
			sellers: []SupplierInfo{{ProductID: productID, ProductCode: "VND-42", ProductName: "Vendor widget"}},
			want:    "[VND-42] Vendor widget\n",
		},
		{
			name:    "name only keeps existing text",
			desc:    "Urgent: ",
			sellers: []SupplierInfo{{ProductID: productID, ProductName: "Vendor widget"}},
			want:    "Urgent: Vendor widget\n",
		},
		{
			name:    "code only",
			sellers: []SupplierInfo{{ProductID: productID, ProductCode: "VND-42"}},
			want:    "[VND-42] ",
		},
		{
			name: "skips other products and empty infos",
			sellers: []SupplierInfo{
				{ProductID: other, ProductCode: "OTHER"},
				{ProductID: productID},
				{ProductID: productID, ProductCode: "SECOND"},
			},
			want: "[SECOND] ",
		},
		{
			name: "no vendor data leaves description",
			desc: "as typed",
			want: "as typed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DescribeRequisitionLine(tt.desc, productID, tt.sellers))
		})
	}
}

func TestRequisition_AddLine(t *testing.T) {
	supplierA := uuid.New()
	supplierB := uuid.New()
	productID := uuid.New()
	sellers := []SupplierInfo{
		{SupplierID: supplierB, ProductID: productID, ProductCode: "B-1", ProductName: "From B"},
		{SupplierID: supplierA, ProductID: productID, ProductCode: "A-1", ProductName: "From A"},
	}

	t.Run("uses targeted supplier", func(t *testing.T) {
		req, err := NewRequisition(uuid.New(), "TE-0001", &supplierA)
		require.NoError(t, err)
		line, err := req.AddLine(productID, decimal.NewFromInt(3), "", sellers)
		require.NoError(t, err)
		assert.Equal(t, "[A-1] From A\n", line.Description)
		assert.Equal(t, req.ID, line.RequisitionID)
	})

	t.Run("first supplier when none targeted", func(t *testing.T) {
		req, err := NewRequisition(uuid.New(), "TE-0002", nil)
		require.NoError(t, err)
		line, err := req.AddLine(productID, decimal.NewFromInt(3), "", sellers)
		require.NoError(t, err)
		assert.Equal(t, "[B-1] From B\n", line.Description)
	})

	t.Run("validation", func(t *testing.T) {
		_, err := NewRequisition(uuid.New(), "", nil)
		assert.Error(t, err)
		req, err := NewRequisition(uuid.New(), "TE-0003", nil)
		require.NoError(t, err)
		_, err = req.AddLine(uuid.Nil, decimal.NewFromInt(1), "", nil)
		assert.Error(t, err)
		_, err = req.AddLine(productID, decimal.NewFromInt(-1), "", nil)
		assert.Error(t, err)
	})
}
