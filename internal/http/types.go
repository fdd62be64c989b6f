package http

import "github.com/gofiber/fiber/v2"

// ErrorDetail is the error envelope for client-visible failures,
// e.g. {"detail": "Job not found"}.
type ErrorDetail struct {
	Detail string `json:"detail"`
}

func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).JSON(ErrorDetail{Detail: msg})
}

func unprocessable(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorDetail{Detail: msg})
}

func internalError(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorDetail{Detail: msg})
}

// PingResponse is the liveness payload for GET /api/ping/.
type PingResponse struct {
	Message string `json:"message"`
}

// VersionResponse surfaces the deployment identity of the running
// service at GET /api/version/.
type VersionResponse struct {
	StackName  string `json:"stack_name"`
	Tag        string `json:"tag"`
	Revision   string `json:"revision"`
	DeployedAt string `json:"deployed_at"`
}
