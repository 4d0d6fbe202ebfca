// Package router đăng ký các route thuộc domain merges: CRUD merge request
// và hai action vòng đời approve/apply.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	mergehdl "github.com/siddharth-2510/cofman/internal/api/merges/handler"
	apirouter "github.com/siddharth-2510/cofman/internal/api/router"
)

// Register đăng ký tất cả route merges lên v1.
func Register(v1 fiber.Router, r *apirouter.Router) error {
	mergeHandler, err := mergehdl.NewMergeHandler()
	if err != nil {
		return fmt.Errorf("create merge handler: %w", err)
	}

	r.RegisterCRUDRoutes(v1, "/merges", mergeHandler, apirouter.ReadWriteConfig, "Merges")
	apirouter.RegisterRouteWithMiddleware(v1, "/merges", "POST", "/approve/:id", nil, mergeHandler.HandleApprove)
	apirouter.RegisterRouteWithMiddleware(v1, "/merges", "POST", "/apply/:id", nil, mergeHandler.HandleApply)

	return nil
}
