package http

import (
	"github.com/gofiber/fiber/v2"

	"bindery/internal/config"
)

func configFromCtx(c *fiber.Ctx) *config.Config {
	cfg, _ := c.Locals("config").(*config.Config)
	return cfg
}

// statusListHandler lists the seeded lifecycle statuses.
func statusListHandler(c *fiber.Ctx) error {
	st := querierFromCtx(c)

	limit, skip, err := parseListParams(c)
	if err != nil {
		return unprocessable(c, err.Error())
	}

	list, err := st.ListStatuses(c.Context(), limit, skip)
	if err != nil {
		return internalError(c, "could not list statuses")
	}
	return c.JSON(list)
}

// jobTypesListHandler lists the seeded job types.
func jobTypesListHandler(c *fiber.Ctx) error {
	st := querierFromCtx(c)

	limit, skip, err := parseListParams(c)
	if err != nil {
		return unprocessable(c, err.Error())
	}

	list, err := st.ListJobTypes(c.Context(), limit, skip)
	if err != nil {
		return internalError(c, "could not list job types")
	}
	return c.JSON(list)
}

// contentServersListHandler lists the known upstream content servers.
func contentServersListHandler(c *fiber.Ctx) error {
	st := querierFromCtx(c)

	limit, skip, err := parseListParams(c)
	if err != nil {
		return unprocessable(c, err.Error())
	}

	list, err := st.ListContentServers(c.Context(), limit, skip)
	if err != nil {
		return internalError(c, "could not list content servers")
	}
	return c.JSON(list)
}

func pingHandler(c *fiber.Ctx) error {
	return c.JSON(PingResponse{Message: "pong"})
}

// versionHandler reports the build identity the process was deployed
// with. Values come from the environment at startup and never change
// for the process lifetime.
func versionHandler(c *fiber.Ctx) error {
	cfg := configFromCtx(c)
	if cfg == nil {
		return c.JSON(VersionResponse{})
	}
	return c.JSON(VersionResponse{
		StackName:  cfg.Build.StackName,
		Tag:        cfg.Build.Tag,
		Revision:   cfg.Build.Revision,
		DeployedAt: cfg.Build.DeployedAt,
	})
}
