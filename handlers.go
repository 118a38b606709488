package main

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vsfastfood/restaurant_backend/config"
	"github.com/vsfastfood/restaurant_backend/models"
	"github.com/vsfastfood/restaurant_backend/models/reports"
	"github.com/vsfastfood/restaurant_backend/utils"
)

// respondError maps domain errors onto http statuses. Validation problems
// are 400 with field detail, missing rows are 404, storage being down is
// 503 so callers know to retry.
func respondError(c *gin.Context, err error) {
	if vErr, ok := utils.AsValidationError(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error(), "fields": vErr.Fields})
		return
	}
	if errors.Is(err, utils.ErrorRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if errors.Is(err, utils.ErrorStorageUnavailable) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable"})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func pathId(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// --- customers ---

func upsertCustomerHandler(c *gin.Context) {
	var input models.NewCustomer
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	customer, err := models.UpsertCustomerByEmail(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": customer})
}

func listCustomersHandler(c *gin.Context) {
	customers, err := models.ListCustomers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": customers})
}

type assignCoinsRequest struct {
	Coins int `json:"coins" binding:"required"`
}

func assignCoinsHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var req assignCoinsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	customer, err := models.AddCustomerCoins(c.Request.Context(), id, req.Coins)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": customer})
}

// --- menu ---

func listMenuHandler(c *gin.Context) {
	items, err := models.ListMenuItems(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func createMenuItemHandler(c *gin.Context) {
	var input models.NewMenuItem
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	item, err := models.CreateMenuItem(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": item})
}

func updateMenuItemHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewMenuItem
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	item, err := models.UpdateMenuItem(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}

func deleteMenuItemHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	item, err := models.DeleteMenuItem(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}

// --- dishes ---

func listDishesHandler(c *gin.Context) {
	var category *models.DishCategory
	if v := c.Query("category"); v != "" {
		cat := models.DishCategory(v)
		if !cat.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category"})
			return
		}
		category = &cat
	}
	dishes, err := models.ListDishes(c.Request.Context(), category)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dishes})
}

func suggestDishesHandler(c *gin.Context) {
	raw := c.Query("tags")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tags query parameter is required"})
		return
	}
	tags := strings.Split(raw, ",")
	limit, _ := strconv.Atoi(c.Query("limit"))
	dishes, err := models.SuggestDishes(c.Request.Context(), tags, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dishes})
}

func createDishHandler(c *gin.Context) {
	var input models.NewDish
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	dish, err := models.CreateDish(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": dish})
}

func updateDishHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewDish
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	dish, err := models.UpdateDish(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dish})
}

func deleteDishHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	dish, err := models.DeleteDish(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dish})
}

// --- users / auth ---

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func loginHandler(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	info, err := models.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": info})
}

func logoutHandler(c *gin.Context) {
	ok, err := models.Logout(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": ok})
}

func createUserHandler(c *gin.Context) {
	var input models.NewUser
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	user, err := models.CreateUser(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": user})
}

func listUsersHandler(c *gin.Context) {
	users, err := models.GetAllUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": users})
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

func changePasswordHandler(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	user, err := models.ChangePassword(c.Request.Context(), req.OldPassword, req.NewPassword)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": user})
}

// --- reviews ---

func submitReviewHandler(c *gin.Context) {
	var input models.NewReview
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	review, err := models.SubmitReview(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": review})
}

func listReviewsHandler(c *gin.Context) {
	var status *models.ReviewStatus
	if v := c.Query("status"); v != "" {
		s := models.ReviewStatus(v)
		if !s.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		status = &s
	} else {
		// public listing shows approved reviews only
		approved := models.ReviewStatusApproved
		status = &approved
	}
	reviews, err := models.ListReviews(c.Request.Context(), status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": reviews})
}

func approveReviewHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	review, err := models.ApproveReview(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": review})
}

func deleteReviewHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	review, err := models.DeleteReview(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": review})
}

type likeReviewRequest struct {
	CustomerId int `json:"customer_id"`
}

func likeReviewHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	customerId, hasCustomer := utils.GetCustomerIdFromContext(c.Request.Context())
	if !hasCustomer {
		var req likeReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.CustomerId <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "customer_id is required"})
			return
		}
		customerId = req.CustomerId
	}
	review, err := models.LikeReview(c.Request.Context(), id, customerId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": review})
}

func topLikedReviewsHandler(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	reviews, err := models.TopLikedReviews(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": reviews})
}

// --- hero offers ---

func listHeroOffersHandler(c *gin.Context) {
	offers, err := models.ListHeroOffers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": offers})
}

func displayedHeroOfferHandler(c *gin.Context) {
	offer, err := models.GetDisplayedHeroOffer(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": offer})
}

func createHeroOfferHandler(c *gin.Context) {
	var input models.NewHeroOffer
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	offer, err := models.CreateHeroOffer(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": offer})
}

func deleteHeroOfferHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	offer, err := models.DeleteHeroOffer(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": offer})
}

func setDisplayedHeroOfferHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	offer, err := models.SetDisplayedHeroOffer(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": offer})
}

// --- orders ---

func createOrderHandler(c *gin.Context) {
	var input models.NewOrder
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	order, err := models.CreateOrder(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": order})
}

func listOrdersHandler(c *gin.Context) {
	orders, err := models.ListOpenOrders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": orders})
}

func getOrderHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	order, err := models.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": order})
}

type invoiceMailPayload struct {
	OrderId int `json:"order_id"`
}

// sendInvoiceHandler queues invoice mail for an order. Delivery and the
// follow-up archival run asynchronously through the outbox.
func sendInvoiceHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	order, err := models.GetOrder(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if order.Customer == nil || order.Customer.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order has no customer email"})
		return
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		respondError(c, utils.ErrorStorageUnavailable)
		return
	}
	err = models.QueueMail(ctx, tx, models.MailKindInvoice, order.ID, "order",
		order.Customer.Email, "Your VS Fastfood invoice", invoiceMailPayload{OrderId: order.ID})
	if err != nil {
		tx.Rollback()
		respondError(c, utils.ErrorStorageUnavailable)
		return
	}
	if err := tx.Commit().Error; err != nil {
		respondError(c, utils.ErrorStorageUnavailable)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"data": gin.H{"order_id": order.ID, "queued": true}})
}

// --- analytics ---

func dailySummaryHandler(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		date = utils.LocalDateString(timeNow())
	}
	if !utils.ValidDateString(date) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}
	summary, err := models.GetDailySummary(c.Request.Context(), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": summary})
}

func listAggregatesHandler(c *gin.Context) {
	from := c.Query("from")
	to := c.Query("to")
	if !utils.ValidDateString(from) || !utils.ValidDateString(to) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to must be YYYY-MM-DD"})
		return
	}
	summaries, err := models.ListDailyAggregates(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": summaries})
}

func salesRangeReportHandler(c *gin.Context) {
	report, err := reports.GetSalesRangeReport(c.Request.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": report})
}

func salesRangeExportHandler(c *gin.Context) {
	content, err := reports.ExportSalesRangeExcel(c.Request.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=sales.xlsx")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", content)
}

// --- leaderboard ---

func leaderboardHandler(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	board, err := models.GetLeaderboard(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": board})
}

// --- otp ---

type otpSendRequest struct {
	Email string `json:"email" binding:"required"`
}

func otpSendHandler(c *gin.Context) {
	var req otpSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	if err := models.SendOtp(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"data": gin.H{"sent": true}})
}

type otpVerifyRequest struct {
	Email string `json:"email" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

func otpVerifyHandler(c *gin.Context) {
	var req otpVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	ctx := c.Request.Context()
	valid, err := models.VerifyOtp(ctx, req.Email, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}
	if !valid {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired code"})
		return
	}

	customer, err := models.GetCustomerByEmail(ctx, req.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	token, err := utils.JwtGenerate(customer.ID, "customer")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"token": token, "customer": customer}})
}

// --- offer blast ---

type offerBlastRequest struct {
	Subject string `json:"subject" binding:"required"`
	Body    string `json:"body" binding:"required"`
}

func offerBlastHandler(c *gin.Context) {
	var req offerBlastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	queued, err := models.QueueOfferBlast(c.Request.Context(), req.Subject, req.Body)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"data": gin.H{"queued": queued}})
}
