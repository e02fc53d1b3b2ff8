package middleware

import (
	"log"
	"net/http"

	"github.com/arifworks/creatix/backend/internal/usage"
	"github.com/arifworks/creatix/backend/pkg/firebase"
	"github.com/labstack/echo/v4"
)

// IdentityGate resolves the caller's plan and free usage counter from the
// identity provider and stores them in the request context. Must run after
// FirebaseAuthMiddleware. A user without a stored counter gets free_usage=0
// written back to the provider.
func IdentityGate(entitlements firebase.EntitlementChecker, usageStore firebase.UsageStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			userID := UserID(c)

			isPremium, err := entitlements.IsPremium(ctx, userID)
			if err != nil {
				log.Printf("identity gate: entitlement lookup failed for %s: %v", userID, err)
				return c.JSON(http.StatusInternalServerError, echo.Map{
					"success": false,
					"message": "Error resolving user plan: " + err.Error(),
				})
			}

			freeUsage := 0
			if !isPremium {
				count, found, err := usageStore.FreeUsage(ctx, userID)
				if err != nil {
					log.Printf("identity gate: usage lookup failed for %s: %v", userID, err)
					return c.JSON(http.StatusInternalServerError, echo.Map{
						"success": false,
						"message": "Error resolving free usage: " + err.Error(),
					})
				}
				if found {
					freeUsage = count
				} else if err := usageStore.SetFreeUsage(ctx, userID, 0); err != nil {
					log.Printf("identity gate: usage init failed for %s: %v", userID, err)
					return c.JSON(http.StatusInternalServerError, echo.Map{
						"success": false,
						"message": "Error initializing free usage: " + err.Error(),
					})
				}
			}

			plan := usage.PlanFree
			if isPremium {
				plan = usage.PlanPremium
			}
			c.Set(ContextPlan, plan)
			c.Set(ContextFreeUsage, freeUsage)

			return next(c)
		}
	}
}

// PlanFromContext returns the caller's plan resolved by the identity gate
func PlanFromContext(c echo.Context) usage.Plan {
	if plan, ok := c.Get(ContextPlan).(usage.Plan); ok {
		return plan
	}
	return usage.PlanFree
}

// FreeUsageFromContext returns the caller's free usage counter resolved by
// the identity gate
func FreeUsageFromContext(c echo.Context) int {
	count, _ := c.Get(ContextFreeUsage).(int)
	return count
}
