package rindegastos

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, router *gin.Engine) *Client {
	t.Helper()
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return NewClient(Config{
		BaseURL:  server.URL,
		APIToken: "test-token",
		Timeout:  5 * time.Second,
	}, zap.NewNop())
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	return router
}

func TestClient_FetchPendingReports(t *testing.T) {
	router := newRouter()
	var gotQuery map[string][]string
	var gotAuth string

	router.GET("/getExpenseReports", func(c *gin.Context) {
		gotQuery = c.Request.URL.Query()
		gotAuth = c.GetHeader("Authorization")
		c.JSON(http.StatusOK, gin.H{
			"ExpenseReports": []gin.H{{
				"Id":                     9001,
				"ReportNumber":           112,
				"EmployeeIdentification": "12.345.678-9",
				"EmployeeName":           "Ana Morales",
				"PolicyName":             "Rendiciones Generales",
				"ReportTotalApproved":    38500.50,
				"SendDate":               "2024-02-20",
				"ExtraFields": []gin.H{
					{"Code": "EMP", "Value": "ACME"},
					{"Code": "RG", "Value": "Rendición"},
				},
			}},
		})
	})

	client := newTestClient(t, router)
	reports, err := client.FetchPendingReports(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 1)

	// Pending filter is the provider's: only approved, not-yet-integrated
	// reports are ever requested.
	assert.Equal(t, []string{"0"}, gotQuery["IntegrationStatus"])
	assert.Equal(t, []string{"1"}, gotQuery["Status"])
	assert.Equal(t, "Bearer test-token", gotAuth)

	report := reports[0]
	assert.Equal(t, "9001", report.ID)
	assert.Equal(t, "112", report.ReportNumber)
	assert.Equal(t, "Ana Morales", report.EmployeeName)
	assert.True(t, report.ApprovedTotal.Equal(decimal.NewFromFloat(38500.50)))
	assert.Equal(t, "2024-02-20", report.SendDate.Format("2006-01-02"))
	require.Len(t, report.ExtraFields, 2)
	assert.Equal(t, "EMP", report.ExtraFields[0].Code)
}

func TestClient_FetchPendingReports_BadDate(t *testing.T) {
	router := newRouter()
	router.GET("/getExpenseReports", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ExpenseReports": []gin.H{{
				"Id":       1,
				"SendDate": "20-02-2024",
			}},
		})
	})

	client := newTestClient(t, router)
	_, err := client.FetchPendingReports(context.Background())
	assert.Error(t, err)
}

func TestClient_FetchExpenseLines(t *testing.T) {
	router := newRouter()
	var gotQuery map[string][]string

	router.GET("/getExpenses", func(c *gin.Context) {
		gotQuery = c.Request.URL.Query()
		c.JSON(http.StatusOK, gin.H{
			"Expenses": []gin.H{{
				"Supplier":     "Uber SPA",
				"CategoryCode": "4-1-02-01-001",
				"IssueDate":    "2024-03-05",
				"Total":        4300,
				"Note":         "Traslado",
				"ExtraFields": []gin.H{
					{"Code": "BOL", "Value": "Boleta afecta"},
					{"Code": "NDOC", "Value": "recibo 12"},
				},
			}},
		})
	})

	client := newTestClient(t, router)
	lines, err := client.FetchExpenseLines(context.Background(), "9001")
	require.NoError(t, err)
	require.Len(t, lines, 1)

	// Lines come back approved only, in the provider's fixed order.
	assert.Equal(t, []string{"9001"}, gotQuery["ReportId"])
	assert.Equal(t, []string{"1"}, gotQuery["Status"])
	assert.Equal(t, []string{"3"}, gotQuery["OrderBy"])
	assert.Equal(t, []string{"ASC"}, gotQuery["Order"])

	assert.Equal(t, "Uber SPA", lines[0].Supplier)
	assert.True(t, lines[0].Total.Equal(decimal.NewFromInt(4300)))
}

func TestClient_MarkIntegrated(t *testing.T) {
	router := newRouter()
	var gotBody map[string]interface{}

	router.PUT("/setExpenseReportIntegration", func(c *gin.Context) {
		require.NoError(t, c.BindJSON(&gotBody))
		c.JSON(http.StatusOK, gin.H{})
	})

	client := newTestClient(t, router)
	err := client.MarkIntegrated(context.Background(), "9001", "4567")
	require.NoError(t, err)

	assert.Equal(t, "9001", gotBody["Id"])
	assert.Equal(t, float64(1), gotBody["IntegrationStatus"])
	assert.Equal(t, "4567", gotBody["IntegrationCode"])
	assert.NotEmpty(t, gotBody["IntegrationDate"])
}

func TestClient_MarkIntegrated_EmptyCode(t *testing.T) {
	router := newRouter()
	var gotCode interface{}

	router.PUT("/setExpenseReportIntegration", func(c *gin.Context) {
		var body map[string]interface{}
		require.NoError(t, c.BindJSON(&body))
		gotCode = body["IntegrationCode"]
		c.JSON(http.StatusOK, gin.H{})
	})

	client := newTestClient(t, router)
	require.NoError(t, client.MarkIntegrated(context.Background(), "9002", ""))
	assert.Equal(t, "", gotCode)
}

func TestClient_MarkIntegrated_ServerError(t *testing.T) {
	router := newRouter()
	router.PUT("/setExpenseReportIntegration", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "boom"})
	})

	client := newTestClient(t, router)
	err := client.MarkIntegrated(context.Background(), "9001", "4567")
	assert.Error(t, err)
}

func TestClient_FetchPendingReports_Unauthorized(t *testing.T) {
	router := newRouter()
	router.GET("/getExpenseReports", func(c *gin.Context) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "bad token"})
	})

	client := newTestClient(t, router)
	_, err := client.FetchPendingReports(context.Background())
	assert.Error(t, err)
}
