package fuelorder_test

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/fbo-launchpad/fuel-ops/internal"
	"github.com/fbo-launchpad/fuel-ops/internal/fuelorder"
	"github.com/fbo-launchpad/fuel-ops/internal/rbac"
)

func TestFuelOrder(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Fuel Order Suite")
}

// Mock repository holding orders in memory. UpdateStatus honors the
// conditional-write contract: it only applies when the stored status still
// matches the expected one.
type mockOrderRepository struct {
	orders        map[int64]*fuelorder.FuelOrder
	nextID        int64
	lastQuery     fuelorder.ListQuery
	forceConflict bool
}

func newMockOrderRepository() *mockOrderRepository {
	return &mockOrderRepository{orders: make(map[int64]*fuelorder.FuelOrder), nextID: 1}
}

func (m *mockOrderRepository) Create(order *fuelorder.FuelOrder) error {
	order.ID = m.nextID
	m.nextID++
	stored := *order
	m.orders[order.ID] = &stored
	return nil
}

func (m *mockOrderRepository) GetByID(id int64) (*fuelorder.FuelOrder, error) {
	order, ok := m.orders[id]
	if !ok {
		return nil, internal.NewNotFoundError(fmt.Sprintf("fuel order %d not found", id), internal.ErrCodeOrderNotFound)
	}
	copied := *order
	return &copied, nil
}

func (m *mockOrderRepository) List(q fuelorder.ListQuery) ([]*fuelorder.FuelOrder, int64, error) {
	m.lastQuery = q

	var matched []*fuelorder.FuelOrder
	for _, order := range m.orders {
		if q.Status != nil && order.Status != *q.Status {
			continue
		}
		if q.AssignedTechnician != nil && order.AssignedTechnician != *q.AssignedTechnician {
			continue
		}
		if q.CustomerID != nil && (order.CustomerID == nil || *order.CustomerID != *q.CustomerID) {
			continue
		}
		copied := *order
		matched = append(matched, &copied)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	if q.Offset >= len(matched) {
		return nil, total, nil
	}
	end := q.Offset + q.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[q.Offset:end], total, nil
}

func (m *mockOrderRepository) ListForExport(status fuelorder.Status) ([]*fuelorder.FuelOrder, error) {
	var matched []*fuelorder.FuelOrder
	for _, order := range m.orders {
		if order.Status == status {
			copied := *order
			matched = append(matched, &copied)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].ReviewedAt == nil || matched[j].ReviewedAt == nil {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].ReviewedAt.After(*matched[j].ReviewedAt)
	})
	return matched, nil
}

func (m *mockOrderRepository) UpdateStatus(order *fuelorder.FuelOrder, expected fuelorder.Status) error {
	stored, ok := m.orders[order.ID]
	if m.forceConflict || !ok || stored.Status != expected {
		return internal.NewConflictError(
			fmt.Sprintf("fuel order %d changed status concurrently, expected %s", order.ID, expected))
	}
	copied := *order
	m.orders[order.ID] = &copied
	return nil
}

func (m *mockOrderRepository) CountOpenByTechnician(technicianIDs []int64) (map[int64]int64, error) {
	open := map[fuelorder.Status]bool{}
	for _, s := range fuelorder.OpenStatuses {
		open[s] = true
	}
	counts := make(map[int64]int64)
	for _, order := range m.orders {
		if open[order.Status] {
			counts[order.AssignedTechnician]++
		}
	}
	return counts, nil
}

func (m *mockOrderRepository) CountByStatus() (map[fuelorder.Status]int64, error) {
	counts := make(map[fuelorder.Status]int64)
	for _, order := range m.orders {
		counts[order.Status]++
	}
	return counts, nil
}

type mockPermissionGate struct {
	grants map[rbac.PermissionName]map[int64]bool
}

func newMockPermissionGate() *mockPermissionGate {
	return &mockPermissionGate{grants: make(map[rbac.PermissionName]map[int64]bool)}
}

func (m *mockPermissionGate) grant(userID int64, perms ...rbac.PermissionName) {
	for _, perm := range perms {
		if m.grants[perm] == nil {
			m.grants[perm] = make(map[int64]bool)
		}
		m.grants[perm][userID] = true
	}
}

func (m *mockPermissionGate) HasPermission(_ context.Context, principal rbac.Principal, perm rbac.PermissionName) (bool, error) {
	if !principal.IsActive {
		return false, nil
	}
	return m.grants[perm][principal.ID], nil
}

func (m *mockPermissionGate) Require(ctx context.Context, principal rbac.Principal, perm rbac.PermissionName) error {
	allowed, err := m.HasPermission(ctx, principal, perm)
	if err != nil {
		return err
	}
	if !allowed {
		return internal.NewForbiddenError("missing permission: "+string(perm), internal.ErrCodeMissingPermission)
	}
	return nil
}

type mockTechnicianDirectory struct {
	activeIDs []int64
}

func (m *mockTechnicianDirectory) ActiveTechnicianIDs() ([]int64, error) {
	return m.activeIDs, nil
}

func (m *mockTechnicianDirectory) IsActiveTechnician(id int64) (bool, error) {
	for _, activeID := range m.activeIDs {
		if activeID == id {
			return true, nil
		}
	}
	return false, nil
}

type mockTruckDirectory struct {
	activeIDs []int64
}

func (m *mockTruckDirectory) FirstActiveTruckID() (int64, error) {
	if len(m.activeIDs) == 0 {
		return 0, internal.NewNoCandidateError("no active trucks available for assignment", internal.ErrCodeNoTruckAvailable)
	}
	return m.activeIDs[0], nil
}

func (m *mockTruckDirectory) IsActiveTruck(id int64) (bool, error) {
	for _, activeID := range m.activeIDs {
		if activeID == id {
			return true, nil
		}
	}
	return false, nil
}

type mockAircraftDirectory struct {
	known        map[string]bool
	placeholders []string
}

func newMockAircraftDirectory(tails ...string) *mockAircraftDirectory {
	known := make(map[string]bool)
	for _, tail := range tails {
		known[tail] = true
	}
	return &mockAircraftDirectory{known: known}
}

func (m *mockAircraftDirectory) Exists(tailNumber string) (bool, error) {
	return m.known[tailNumber], nil
}

func (m *mockAircraftDirectory) CreatePlaceholder(tailNumber, fuelType string) error {
	m.known[tailNumber] = true
	m.placeholders = append(m.placeholders, tailNumber)
	return nil
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

const (
	dispatcherID = int64(100)
	techID       = int64(201)
	otherTechID  = int64(202)
	thirdTechID  = int64(203)
	truckID      = int64(11)
)

var _ = Describe("Fuel Order Service", func() {
	var (
		repo        *mockOrderRepository
		gate        *mockPermissionGate
		technicians *mockTechnicianDirectory
		trucks      *mockTruckDirectory
		fleet       *mockAircraftDirectory
		service     *fuelorder.Service
		ctx         context.Context

		dispatcher rbac.Principal
		technician rbac.Principal
	)

	newOrder := func(techID int64, status fuelorder.Status) *fuelorder.FuelOrder {
		order := &fuelorder.FuelOrder{
			Status:             fuelorder.StatusDispatched,
			TailNumber:         "N123AB",
			FuelType:           "JET_A",
			AssignedTechnician: techID,
			AssignedTruckID:    truckID,
		}
		Expect(repo.Create(order)).To(Succeed())
		stored := repo.orders[order.ID]
		stored.Status = status
		order.Status = status
		return order
	}

	BeforeEach(func() {
		repo = newMockOrderRepository()
		gate = newMockPermissionGate()
		technicians = &mockTechnicianDirectory{activeIDs: []int64{techID, otherTechID, thirdTechID}}
		trucks = &mockTruckDirectory{activeIDs: []int64{truckID, 12}}
		fleet = newMockAircraftDirectory("N123AB")
		service = fuelorder.NewService(repo, gate, technicians, trucks, fleet, newTestLogger())
		ctx = context.Background()

		dispatcher = rbac.Principal{ID: dispatcherID, IsActive: true}
		technician = rbac.Principal{ID: techID, IsActive: true}

		gate.grant(dispatcherID,
			rbac.PermCreateOrder, rbac.PermViewAllOrders, rbac.PermReviewOrders,
			rbac.PermExportOrdersCSV, rbac.PermViewOrderStats, rbac.PermDeleteFuelOrder)
		gate.grant(techID,
			rbac.PermViewAssignedOrders, rbac.PermUpdateOwnOrderStatus, rbac.PermCompleteOwnOrder)
	})

	Describe("CreateOrder", func() {
		It("creates a dispatched order with timestamps", func() {
			order, err := service.CreateOrder(ctx, dispatcher, fuelorder.CreateOrderDTO{
				TailNumber:         "N123AB",
				FuelType:           "JET_A",
				AssignedTechnician: techID,
				AssignedTruckID:    truckID,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(order.Status).To(Equal(fuelorder.StatusDispatched))
			Expect(order.DispatchedAt).NotTo(BeNil())
			Expect(order.CreatedAt).NotTo(BeZero())
		})

		It("rejects callers without the create permission", func() {
			_, err := service.CreateOrder(ctx, technician, fuelorder.CreateOrderDTO{
				TailNumber:         "N123AB",
				FuelType:           "JET_A",
				AssignedTechnician: techID,
				AssignedTruckID:    truckID,
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeForbidden))
		})

		It("rejects missing required fields", func() {
			_, err := service.CreateOrder(ctx, dispatcher, fuelorder.CreateOrderDTO{
				FuelType:           "JET_A",
				AssignedTechnician: techID,
				AssignedTruckID:    truckID,
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeMissingField))
		})

		It("rejects an inactive technician id", func() {
			_, err := service.CreateOrder(ctx, dispatcher, fuelorder.CreateOrderDTO{
				TailNumber:         "N123AB",
				FuelType:           "JET_A",
				AssignedTechnician: 999,
				AssignedTruckID:    truckID,
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("assigns the least-busy technician for the sentinel id", func() {
			for i := 0; i < 3; i++ {
				newOrder(techID, fuelorder.StatusDispatched)
			}
			newOrder(otherTechID, fuelorder.StatusFueling)
			newOrder(thirdTechID, fuelorder.StatusEnRoute)
			newOrder(thirdTechID, fuelorder.StatusAcknowledged)

			order, err := service.CreateOrder(ctx, dispatcher, fuelorder.CreateOrderDTO{
				TailNumber:         "N123AB",
				FuelType:           "JET_A",
				AssignedTechnician: fuelorder.AutoAssignID,
				AssignedTruckID:    truckID,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(order.AssignedTechnician).To(Equal(otherTechID))
		})

		It("does not count completed orders toward workload", func() {
			newOrder(techID, fuelorder.StatusCompleted)
			newOrder(techID, fuelorder.StatusReviewed)
			newOrder(otherTechID, fuelorder.StatusDispatched)
			newOrder(thirdTechID, fuelorder.StatusDispatched)

			order, err := service.CreateOrder(ctx, dispatcher, fuelorder.CreateOrderDTO{
				TailNumber:         "N123AB",
				FuelType:           "JET_A",
				AssignedTechnician: fuelorder.AutoAssignID,
				AssignedTruckID:    truckID,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(order.AssignedTechnician).To(Equal(techID))
		})

		It("fails with no-candidate when no technician is active", func() {
			technicians.activeIDs = nil

			_, err := service.CreateOrder(ctx, dispatcher, fuelorder.CreateOrderDTO{
				TailNumber:         "N123AB",
				FuelType:           "JET_A",
				AssignedTechnician: fuelorder.AutoAssignID,
				AssignedTruckID:    truckID,
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeNoCandidate))
			Expect(appErr.Code).To(Equal(internal.ErrCodeNoTechnicianAvailable))
		})

		It("assigns the first active truck for the sentinel id", func() {
			order, err := service.CreateOrder(ctx, dispatcher, fuelorder.CreateOrderDTO{
				TailNumber:         "N123AB",
				FuelType:           "JET_A",
				AssignedTechnician: techID,
				AssignedTruckID:    fuelorder.AutoAssignID,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(order.AssignedTruckID).To(Equal(truckID))
		})

		It("fails with no-candidate when no truck is active", func() {
			trucks.activeIDs = nil

			_, err := service.CreateOrder(ctx, dispatcher, fuelorder.CreateOrderDTO{
				TailNumber:         "N123AB",
				FuelType:           "JET_A",
				AssignedTechnician: techID,
				AssignedTruckID:    fuelorder.AutoAssignID,
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeNoCandidate))
			Expect(appErr.Code).To(Equal(internal.ErrCodeNoTruckAvailable))
		})

		It("creates a placeholder aircraft for an unknown tail number", func() {
			_, err := service.CreateOrder(ctx, dispatcher, fuelorder.CreateOrderDTO{
				TailNumber:         "N999ZZ",
				FuelType:           "JET_A",
				AssignedTechnician: techID,
				AssignedTruckID:    truckID,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(fleet.placeholders).To(ContainElement("N999ZZ"))
		})
	})

	Describe("SelectTechnician", func() {
		It("picks the minimum open-order count", func() {
			for i := 0; i < 3; i++ {
				newOrder(techID, fuelorder.StatusDispatched)
			}
			newOrder(otherTechID, fuelorder.StatusAcknowledged)
			newOrder(thirdTechID, fuelorder.StatusEnRoute)
			newOrder(thirdTechID, fuelorder.StatusFueling)

			selected, err := service.SelectTechnician()
			Expect(err).NotTo(HaveOccurred())
			Expect(selected).To(Equal(otherTechID))
		})

		It("breaks ties by first candidate encountered", func() {
			selected, err := service.SelectTechnician()
			Expect(err).NotTo(HaveOccurred())
			Expect(selected).To(Equal(techID))
		})
	})

	Describe("UpdateStatus", func() {
		It("walks the dispatched order through the technician edges", func() {
			order := newOrder(techID, fuelorder.StatusDispatched)

			updated, err := service.UpdateStatus(ctx, technician, order.ID, fuelorder.UpdateStatusDTO{Status: "ACKNOWLEDGED"})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Status).To(Equal(fuelorder.StatusAcknowledged))
			Expect(updated.AcknowledgedAt).NotTo(BeNil())

			updated, err = service.UpdateStatus(ctx, technician, order.ID, fuelorder.UpdateStatusDTO{Status: "EN_ROUTE"})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Status).To(Equal(fuelorder.StatusEnRoute))
			Expect(updated.EnRouteAt).NotTo(BeNil())

			updated, err = service.UpdateStatus(ctx, technician, order.ID, fuelorder.UpdateStatusDTO{Status: "FUELING"})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Status).To(Equal(fuelorder.StatusFueling))
			Expect(updated.FuelingStartedAt).NotTo(BeNil())
		})

		It("rejects a backward transition", func() {
			order := newOrder(techID, fuelorder.StatusCompleted)

			_, err := service.UpdateStatus(ctx, technician, order.ID, fuelorder.UpdateStatusDTO{Status: "ACKNOWLEDGED"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeInvalidTransition))
		})

		It("rejects skipping a stage", func() {
			order := newOrder(techID, fuelorder.StatusDispatched)

			_, err := service.UpdateStatus(ctx, technician, order.ID, fuelorder.UpdateStatusDTO{Status: "FUELING"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeInvalidTransition))
		})

		It("rejects an unknown status value", func() {
			order := newOrder(techID, fuelorder.StatusDispatched)

			_, err := service.UpdateStatus(ctx, technician, order.ID, fuelorder.UpdateStatusDTO{Status: "TELEPORTED"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidStatusValue))
		})

		It("rejects callers who are not the assigned technician", func() {
			order := newOrder(otherTechID, fuelorder.StatusDispatched)
			gate.grant(techID, rbac.PermUpdateOwnOrderStatus)

			_, err := service.UpdateStatus(ctx, technician, order.ID, fuelorder.UpdateStatusDTO{Status: "ACKNOWLEDGED"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeNotOrderAssignee))
		})

		It("rejects dispatchers even with broad permissions", func() {
			order := newOrder(techID, fuelorder.StatusDispatched)
			gate.grant(dispatcherID, rbac.PermUpdateOwnOrderStatus)

			_, err := service.UpdateStatus(ctx, dispatcher, order.ID, fuelorder.UpdateStatusDTO{Status: "ACKNOWLEDGED"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeNotOrderAssignee))
		})

		It("surfaces a lost transition race as a retryable conflict", func() {
			order := newOrder(techID, fuelorder.StatusDispatched)
			repo.forceConflict = true

			_, err := service.UpdateStatus(ctx, technician, order.ID, fuelorder.UpdateStatusDTO{Status: "ACKNOWLEDGED"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeConflict))
			Expect(appErr.Retryable()).To(BeTrue())
		})

		It("returns not-found for a missing order", func() {
			_, err := service.UpdateStatus(ctx, technician, 424242, fuelorder.UpdateStatusDTO{Status: "ACKNOWLEDGED"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeNotFound))
		})
	})

	Describe("CompleteFueling", func() {
		It("computes gallons dispensed from the meter readings", func() {
			order := newOrder(techID, fuelorder.StatusFueling)

			completed, err := service.CompleteFueling(ctx, technician, order.ID, fuelorder.CompleteOrderDTO{
				StartMeterReading: decimal.RequireFromString("1000.00"),
				EndMeterReading:   decimal.RequireFromString("1950.00"),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(completed.Status).To(Equal(fuelorder.StatusCompleted))
			Expect(completed.GallonsDispensed).NotTo(BeNil())
			Expect(completed.GallonsDispensed.Equal(decimal.RequireFromString("950.00"))).To(BeTrue())
			Expect(completed.CompletedAt).NotTo(BeNil())
		})

		It("rejects an end reading below the start reading", func() {
			order := newOrder(techID, fuelorder.StatusFueling)

			_, err := service.CompleteFueling(ctx, technician, order.ID, fuelorder.CompleteOrderDTO{
				StartMeterReading: decimal.RequireFromString("500.00"),
				EndMeterReading:   decimal.RequireFromString("400.00"),
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidMeterReadings))
		})

		It("rejects completion outside the fueling state", func() {
			order := newOrder(techID, fuelorder.StatusEnRoute)

			_, err := service.CompleteFueling(ctx, technician, order.ID, fuelorder.CompleteOrderDTO{
				StartMeterReading: decimal.RequireFromString("100.00"),
				EndMeterReading:   decimal.RequireFromString("200.00"),
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeInvalidState))
		})

		It("rejects a non-assignee", func() {
			order := newOrder(otherTechID, fuelorder.StatusFueling)

			_, err := service.CompleteFueling(ctx, technician, order.ID, fuelorder.CompleteOrderDTO{
				StartMeterReading: decimal.RequireFromString("100.00"),
				EndMeterReading:   decimal.RequireFromString("200.00"),
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeNotOrderAssignee))
		})
	})

	Describe("Review", func() {
		It("records the reviewer on a completed order", func() {
			order := newOrder(techID, fuelorder.StatusCompleted)

			reviewed, err := service.Review(ctx, dispatcher, order.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(reviewed.Status).To(Equal(fuelorder.StatusReviewed))
			Expect(reviewed.ReviewedAt).NotTo(BeNil())
			Expect(reviewed.ReviewedByUserID).To(HaveValue(Equal(dispatcherID)))
		})

		It("rejects reviewing an order that is not completed", func() {
			order := newOrder(techID, fuelorder.StatusFueling)

			_, err := service.Review(ctx, dispatcher, order.ID)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeInvalidState))
		})

		It("requires the review permission", func() {
			order := newOrder(techID, fuelorder.StatusCompleted)

			_, err := service.Review(ctx, technician, order.ID)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeForbidden))
		})
	})

	Describe("Cancel", func() {
		It("cancels a non-terminal order", func() {
			order := newOrder(techID, fuelorder.StatusEnRoute)

			cancelled, err := service.Cancel(ctx, dispatcher, order.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(cancelled.Status).To(Equal(fuelorder.StatusCancelled))
		})

		It("rejects cancelling a reviewed order", func() {
			order := newOrder(techID, fuelorder.StatusReviewed)

			_, err := service.Cancel(ctx, dispatcher, order.ID)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeInvalidState))
		})
	})

	Describe("ListOrders", func() {
		It("scopes technicians to their own assignments", func() {
			newOrder(techID, fuelorder.StatusDispatched)
			newOrder(otherTechID, fuelorder.StatusDispatched)

			page, err := service.ListOrders(ctx, technician, fuelorder.ListFilters{})
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.lastQuery.AssignedTechnician).To(HaveValue(Equal(techID)))
			for _, order := range page.Orders {
				Expect(order.AssignedTechnician).To(Equal(techID))
			}
		})

		It("does not scope holders of the view-all permission", func() {
			newOrder(techID, fuelorder.StatusDispatched)
			newOrder(otherTechID, fuelorder.StatusDispatched)

			page, err := service.ListOrders(ctx, dispatcher, fuelorder.ListFilters{})
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.lastQuery.AssignedTechnician).To(BeNil())
			Expect(page.Total).To(Equal(int64(2)))
		})

		It("forbids principals without any view permission", func() {
			stranger := rbac.Principal{ID: 999, IsActive: true}

			_, err := service.ListOrders(ctx, stranger, fuelorder.ListFilters{})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeForbidden))
		})

		It("rejects an invalid status filter", func() {
			_, err := service.ListOrders(ctx, dispatcher, fuelorder.ListFilters{Status: "SIDEWAYS"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidStatusValue))
		})

		It("clamps pagination to the supported window", func() {
			_, err := service.ListOrders(ctx, dispatcher, fuelorder.ListFilters{Page: -3, PerPage: 5000})
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.lastQuery.Limit).To(Equal(100))
			Expect(repo.lastQuery.Offset).To(Equal(0))

			_, err = service.ListOrders(ctx, dispatcher, fuelorder.ListFilters{})
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.lastQuery.Limit).To(Equal(20))
		})
	})

	Describe("GetOrderByID", func() {
		It("returns not-found for a missing order", func() {
			_, err := service.GetOrderByID(ctx, dispatcher, 424242)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeNotFound))
		})

		It("returns forbidden for an order outside the caller's scope", func() {
			order := newOrder(otherTechID, fuelorder.StatusDispatched)

			_, err := service.GetOrderByID(ctx, technician, order.ID)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeForbidden))
		})

		It("returns own orders to the assigned technician", func() {
			order := newOrder(techID, fuelorder.StatusDispatched)

			loaded, err := service.GetOrderByID(ctx, technician, order.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.ID).To(Equal(order.ID))
		})
	})

	Describe("StatusCounts", func() {
		It("counts orders grouped by status", func() {
			newOrder(techID, fuelorder.StatusDispatched)
			newOrder(techID, fuelorder.StatusDispatched)
			newOrder(otherTechID, fuelorder.StatusCompleted)

			counts, err := service.StatusCounts(ctx, dispatcher)
			Expect(err).NotTo(HaveOccurred())
			Expect(counts[fuelorder.StatusDispatched]).To(Equal(int64(2)))
			Expect(counts[fuelorder.StatusCompleted]).To(Equal(int64(1)))
		})

		It("requires the stats permission", func() {
			_, err := service.StatusCounts(ctx, technician)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeForbidden))
		})
	})

	Describe("end to end", func() {
		It("runs an order from dispatch through review and export", func() {
			newOrder(otherTechID, fuelorder.StatusDispatched)
			newOrder(thirdTechID, fuelorder.StatusDispatched)
			newOrder(thirdTechID, fuelorder.StatusFueling)

			order, err := service.CreateOrder(ctx, dispatcher, fuelorder.CreateOrderDTO{
				TailNumber:         "N123AB",
				FuelType:           "JET_A",
				AssignedTechnician: fuelorder.AutoAssignID,
				AssignedTruckID:    fuelorder.AutoAssignID,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(order.AssignedTechnician).To(Equal(techID))
			Expect(order.AssignedTruckID).To(Equal(truckID))

			for _, status := range []string{"ACKNOWLEDGED", "EN_ROUTE", "FUELING"} {
				_, err = service.UpdateStatus(ctx, technician, order.ID, fuelorder.UpdateStatusDTO{Status: status})
				Expect(err).NotTo(HaveOccurred())
			}

			completed, err := service.CompleteFueling(ctx, technician, order.ID, fuelorder.CompleteOrderDTO{
				StartMeterReading: decimal.RequireFromString("1000.00"),
				EndMeterReading:   decimal.RequireFromString("1950.00"),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(completed.GallonsDispensed.Equal(decimal.RequireFromString("950.00"))).To(BeTrue())

			reviewed, err := service.Review(ctx, dispatcher, order.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(reviewed.Status).To(Equal(fuelorder.StatusReviewed))

			var buf strings.Builder
			Expect(service.ExportCSV(ctx, dispatcher, "", &buf)).To(Succeed())
			Expect(buf.String()).To(ContainSubstring("N123AB"))
			Expect(buf.String()).To(ContainSubstring("950.00"))
			Expect(buf.String()).To(ContainSubstring("REVIEWED"))
		})
	})
})
