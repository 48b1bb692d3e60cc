package main

import (
	"github.com/gin-gonic/gin"
	"recurpay.backend/internal/interfaces/http/handlers"
)

type routeDeps struct {
	paymentTypeHandler      *handlers.PaymentTypeHandler
	recurringPaymentHandler *handlers.RecurringPaymentHandler
	automationHandler       *handlers.AutomationHandler
	governanceHandler       *handlers.GovernanceHandler
	tokenHandler            *handlers.TokenHandler
	smartContractHandler    *handlers.SmartContractHandler
	backendHandler          *handlers.BackendHandler
	eventHandler            *handlers.EventHandler
	authMiddleware          gin.HandlerFunc
	idempotencyMiddleware   gin.HandlerFunc
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	v1.Use(d.authMiddleware)
	{
		// Payment type registry (public read)
		paymentTypes := v1.Group("/payment-types")
		{
			paymentTypes.GET("", d.paymentTypeHandler.ListPaymentTypes)
			paymentTypes.GET("/:name", d.paymentTypeHandler.GetPaymentType)
		}

		recurring := v1.Group("/recurring-payments")
		{
			recurring.GET("", d.recurringPaymentHandler.ListRecurringPayments)
			recurring.POST("", d.idempotencyMiddleware, d.recurringPaymentHandler.CreateRecurringPayment)
			recurring.DELETE("", d.recurringPaymentHandler.CancelRecurringPayment)
			recurring.GET("/:owner", d.recurringPaymentHandler.GetRecurringPayment)
			recurring.GET("/:owner/check", d.recurringPaymentHandler.CheckRecurringPayment)
			recurring.POST("/:owner/execute", d.recurringPaymentHandler.ExecuteRecurringPayment)
		}

		automation := v1.Group("/automation")
		{
			automation.GET("/gas-price/check", d.automationHandler.CheckGasPrice)
			automation.GET("/treasury", d.automationHandler.GetTreasury)
			automation.POST("/treasury/deposit", d.automationHandler.DepositTreasury)
		}

		v1.POST("/governance/accept", d.governanceHandler.AcceptGovernance)

		tokens := v1.Group("/tokens/:token")
		{
			tokens.GET("/balance/:account", d.tokenHandler.GetBalance)
			tokens.GET("/allowance/:owner/:spender", d.tokenHandler.GetAllowance)
			tokens.POST("/approve", d.tokenHandler.Approve)
			tokens.POST("/transfer", d.tokenHandler.Transfer)
		}

		contracts := v1.Group("/contracts")
		{
			contracts.GET("", d.smartContractHandler.ListSmartContracts)
			contracts.GET("/:address", d.smartContractHandler.GetSmartContract)
		}

		ledger := v1.Group("/backends/ledger/:backend")
		{
			ledger.GET("/balance/:account", d.backendHandler.LedgerBalance)
			ledger.POST("/deposit", d.backendHandler.LedgerDeposit)
			ledger.POST("/pull", d.backendHandler.LedgerPull)
		}

		stream := v1.Group("/backends/stream/:backend/:owner")
		{
			stream.GET("", d.backendHandler.GetStream)
			stream.POST("/withdraw", d.backendHandler.WithdrawStream)
		}

		v1.GET("/events", d.eventHandler.ListEvents)

		// Governor-only routes; authorization is enforced by the usecases
		admin := v1.Group("/admin")
		{
			admin.POST("/payment-types", d.paymentTypeHandler.RegisterPaymentType)
			admin.DELETE("/payment-types/:name", d.paymentTypeHandler.UnregisterPaymentType)
			admin.PUT("/payment-types/:name/minimum", d.paymentTypeHandler.UpdateMinimumAmount)

			admin.DELETE("/recurring-payments/:owner", d.recurringPaymentHandler.CancelRecurringPaymentFor)

			admin.PUT("/automation/max-gas-price", d.automationHandler.SetMaxGasPrice)
			admin.POST("/automation/treasury/withdraw", d.automationHandler.WithdrawTreasury)

			admin.GET("/settings", d.governanceHandler.GetSettings)
			admin.PUT("/settings/execution-interval", d.governanceHandler.SetExecutionInterval)
			admin.PUT("/settings/expiration-interval", d.governanceHandler.SetExpirationInterval)
			admin.POST("/governance/transfer", d.governanceHandler.TransferGovernance)
			admin.POST("/rescue", d.governanceHandler.RescueTokens)

			admin.POST("/tokens/:token/mint", d.tokenHandler.Mint)

			admin.POST("/contracts", d.smartContractHandler.CreateSmartContract)
			admin.DELETE("/contracts/:address", d.smartContractHandler.DeleteSmartContract)
		}
	}
}
