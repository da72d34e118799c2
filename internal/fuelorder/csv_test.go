package fuelorder_test

import (
	"context"
	"encoding/csv"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/fbo-launchpad/fuel-ops/internal"
	"github.com/fbo-launchpad/fuel-ops/internal/fuelorder"
	"github.com/fbo-launchpad/fuel-ops/internal/rbac"
)

var _ = Describe("CSV Export", func() {
	var (
		repo       *mockOrderRepository
		gate       *mockPermissionGate
		service    *fuelorder.Service
		ctx        context.Context
		dispatcher rbac.Principal
	)

	BeforeEach(func() {
		repo = newMockOrderRepository()
		gate = newMockPermissionGate()
		logger := newTestLogger()
		service = fuelorder.NewService(repo, gate, &mockTechnicianDirectory{}, &mockTruckDirectory{}, newMockAircraftDirectory(), logger)
		ctx = context.Background()

		dispatcher = rbac.Principal{ID: dispatcherID, IsActive: true}
		gate.grant(dispatcherID, rbac.PermExportOrdersCSV)
	})

	seedReviewedOrder := func() *fuelorder.FuelOrder {
		created := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
		reviewed := time.Date(2024, 6, 2, 15, 30, 45, 0, time.UTC)
		customerID := int64(42)
		reviewer := int64(dispatcherID)
		start := decimal.RequireFromString("1000.00")
		end := decimal.RequireFromString("1950.00")
		gallons := decimal.RequireFromString("950.00")

		order := &fuelorder.FuelOrder{
			Status:             fuelorder.StatusReviewed,
			TailNumber:         "N123AB",
			CustomerID:         &customerID,
			FuelType:           "JET_A",
			AdditiveRequested:  true,
			AssignedTechnician: techID,
			AssignedTruckID:    truckID,
			LocationOnRamp:     "Ramp 4",
			StartMeterReading:  &start,
			EndMeterReading:    &end,
			GallonsDispensed:   &gallons,
			CreatedAt:          created,
			ReviewedAt:         &reviewed,
			ReviewedByUserID:   &reviewer,
		}
		Expect(repo.Create(order)).To(Succeed())
		return order
	}

	It("requires the export permission", func() {
		stranger := rbac.Principal{ID: 999, IsActive: true}
		var buf strings.Builder

		err := service.ExportCSV(ctx, stranger, "", &buf)
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Type).To(Equal(internal.ErrorTypeForbidden))
	})

	It("writes a header-only document for an empty result set", func() {
		var buf strings.Builder

		Expect(service.ExportCSV(ctx, dispatcher, "", &buf)).To(Succeed())

		records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(1))
		Expect(records[0][0]).To(Equal("Order ID"))
	})

	It("renders a reviewed order with the fixed column conventions", func() {
		seedReviewedOrder()
		var buf strings.Builder

		Expect(service.ExportCSV(ctx, dispatcher, "", &buf)).To(Succeed())

		records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(2))

		header := records[0]
		row := records[1]
		byColumn := map[string]string{}
		for i, name := range header {
			byColumn[name] = row[i]
		}

		Expect(byColumn["Status"]).To(Equal("REVIEWED"))
		Expect(byColumn["Tail Number"]).To(Equal("N123AB"))
		Expect(byColumn["Customer ID"]).To(Equal("42"))
		Expect(byColumn["Additive Requested"]).To(Equal("Yes"))
		Expect(byColumn["Requested Amount"]).To(Equal(""))
		Expect(byColumn["Start Meter Reading"]).To(Equal("1000.00"))
		Expect(byColumn["End Meter Reading"]).To(Equal("1950.00"))
		Expect(byColumn["Gallons Dispensed"]).To(Equal("950.00"))
		Expect(byColumn["Created At"]).To(Equal("2024-06-01 10:00:00"))
		Expect(byColumn["Reviewed At"]).To(Equal("2024-06-02 15:30:45"))
		Expect(byColumn["Dispatched At"]).To(Equal(""))
		Expect(byColumn["LST Notes"]).To(Equal(""))
	})

	It("defaults to reviewed orders and honors a status override", func() {
		seedReviewedOrder()
		dispatched := &fuelorder.FuelOrder{
			Status:             fuelorder.StatusDispatched,
			TailNumber:         "N456CD",
			FuelType:           "AVGAS_100LL",
			AssignedTechnician: techID,
			AssignedTruckID:    truckID,
			CreatedAt:          time.Now().UTC(),
		}
		Expect(repo.Create(dispatched)).To(Succeed())

		var reviewedBuf strings.Builder
		Expect(service.ExportCSV(ctx, dispatcher, "", &reviewedBuf)).To(Succeed())
		Expect(reviewedBuf.String()).To(ContainSubstring("N123AB"))
		Expect(reviewedBuf.String()).NotTo(ContainSubstring("N456CD"))

		var dispatchedBuf strings.Builder
		Expect(service.ExportCSV(ctx, dispatcher, "DISPATCHED", &dispatchedBuf)).To(Succeed())
		Expect(dispatchedBuf.String()).To(ContainSubstring("N456CD"))
		Expect(dispatchedBuf.String()).NotTo(ContainSubstring("N123AB"))
	})

	It("rejects an unknown status filter", func() {
		var buf strings.Builder

		err := service.ExportCSV(ctx, dispatcher, "SIDEWAYS", &buf)
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidStatusValue))
	})
})
