package transport

import (
	"fmt"
	"io"
	"time"

	"github.com/labstack/echo/v4"
)

func timeNowFunc() time.Time { return time.Now() }

func fmtSscan(s string, n *int) (int, error) {
	return fmt.Sscanf(s, "%d", n)
}

func readAll(c echo.Context) ([]byte, error) {
	return io.ReadAll(c.Request().Body)
}
