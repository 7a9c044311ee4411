package ticker

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tejbhatt/stock-ticker-app-omnenest-assignment/messages"
	"github.com/tejbhatt/stock-ticker-app-omnenest-assignment/schema"
	"github.com/tejbhatt/stock-ticker-app-omnenest-assignment/subscription"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

type apiSample struct {
	T     int64   `json:"t"` // unix milliseconds
	Value float64 `json:"value"`
}

func packSamples(samples []schema.Sample) []apiSample {
	result := make([]apiSample, len(samples))
	for i, s := range samples {
		result[i] = apiSample{T: s.Timestamp.UnixMilli(), Value: s.Value}
	}
	return result
}

func (t *Ticker) setupServer() error {
	r := t.server

	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/api/symbols")
	})

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/api/symbols", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"symbols": t.Symbols()})
	})

	r.GET("/api/ticker/:symbol", func(c *gin.Context) {
		snapshot, err := t.Snapshot(c.Param("symbol"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, snapshot)
	})

	r.GET("/api/ticker/:symbol/history", func(c *gin.Context) {
		symbol := c.Param("symbol")
		history, err := t.History(symbol)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"symbol":  symbol,
			"samples": packSamples(history),
		})
	})

	r.GET("/api/ticker/:symbol/expired", func(c *gin.Context) {
		symbol := c.Param("symbol")
		expired, err := t.Expired(symbol)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"symbol":  symbol,
			"samples": packSamples(expired),
		})
	})

	r.GET("/ws", func(c *gin.Context) {
		ctx := c.Request.Context()

		conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			_ = c.AbortWithError(http.StatusInternalServerError, err)
			return
		}

		defer func() {
			_ = conn.Close(websocket.StatusInternalError, "Closed unexpectedly")
		}()

		_, reqBytes, err := conn.Read(ctx)
		if err != nil {
			fmt.Println("ws read error", err.Error())
			return
		}
		conn.CloseRead(ctx)

		var req subscription.Request
		if err := json.Unmarshal(reqBytes, &req); err != nil {
			fmt.Println("ws error", errors.Wrap(err, "unmarshal json"))
			return
		}

		t.Subscribe(ctx, &req, time.Now(), func(data *messages.Data) error {
			if err := wsjson.Write(ctx, conn, data); err != nil {
				return errors.Wrap(err, "write ws message")
			}
			return nil
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return nil
}

func (t *Ticker) RunServer(address string) error {
	if err := t.server.Run(address); err != nil {
		return errors.Wrap(err, "run")
	}
	return nil
}
