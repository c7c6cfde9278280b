package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/graph-gophers/graphql-go"
	gqlerrors "github.com/graph-gophers/graphql-go/errors"
	"github.com/graph-gophers/graphql-go/relay"
	"github.com/labstack/echo/v4"

	"github.com/locvowork/employee_graphql_sample/internal/domain"
	"github.com/locvowork/employee_graphql_sample/internal/graph"
	"github.com/locvowork/employee_graphql_sample/internal/logger"
	"github.com/locvowork/employee_graphql_sample/internal/service/serviceutils"
)

const employeeByNameDocument = `query employeeByName($name: String) {
  employeeByName(employeeName: $name) { id name salary departmentId }
}`

// GraphQLRequest is the body of a GraphQL call, over HTTP or the first websocket message.
type GraphQLRequest struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

type GraphQLHandler struct {
	schema   *graphql.Schema
	relay    *relay.Handler
	upgrader websocket.Upgrader
}

func NewGraphQLHandler(schema *graphql.Schema) *GraphQLHandler {
	return &GraphQLHandler{
		schema: schema,
		relay:  &relay.Handler{Schema: schema},
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// QueryHandler serves POST /graphql.
func (h *GraphQLHandler) QueryHandler(c echo.Context) error {
	h.relay.ServeHTTP(c.Response(), c.Request())
	return nil
}

// SubscriptionHandler serves one subscription per websocket: the client sends a
// single GraphQLRequest, every result is written back as a JSON message, and the
// socket is closed when the stream ends. Closing the socket cancels the stream.
func (h *GraphQLHandler) SubscriptionHandler(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	var req GraphQLRequest
	if err := conn.ReadJSON(&req); err != nil {
		logger.WarnLog(ctx, "subscription request unreadable: %v", err)
		return nil
	}
	logDocument(ctx, req)

	responses, err := h.schema.Subscribe(ctx, req.Query, req.OperationName, req.Variables)
	if err != nil {
		_ = conn.WriteJSON(&graphql.Response{Errors: graphQLErrors(err)})
		return nil
	}

	// any client message or disconnect ends the subscription
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	for r := range responses {
		if err := conn.WriteJSON(r); err != nil {
			logger.WarnLog(ctx, "subscription write failed: %v", err)
			return nil
		}
	}

	deadline := time.Now().Add(time.Second)
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "complete"), deadline)
	return nil
}

// EmployeeByNameHandler serves GET /employeeByName?name= by executing the
// employeeByName query in process.
func (h *GraphQLHandler) EmployeeByNameHandler(c echo.Context) error {
	name, ok := c.QueryParams()["name"]
	if !ok || len(name) == 0 {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Missing employee name",
			domain.NewValidationError("name", "required"))
	}

	resp := h.schema.Exec(c.Request().Context(), employeeByNameDocument, "", map[string]interface{}{"name": name[0]})
	if len(resp.Errors) > 0 {
		qerr := resp.Errors[0]
		code, _ := qerr.Extensions["code"].(string)
		return serviceutils.ResponseError(c, statusForCode(code), "Failed to find employees", qerr)
	}

	var data struct {
		EmployeeByName []domain.Employee `json:"employeeByName"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to decode employees", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Employees retrieved successfully", data.EmployeeByName)
}

func (h *GraphQLHandler) HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// LogDocumentMiddleware attaches a request scoped logger to the wrapped routes
// and logs every GraphQL document posted to them.
func LogDocumentMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			fields := map[string]interface{}{"path": req.URL.Path}
			if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
				fields["request_id"] = id
			}

			if req.Method != http.MethodPost || req.Body == nil {
				c.SetRequest(req.WithContext(logger.WithLogger(req.Context(), fields)))
				return next(c)
			}

			body, err := io.ReadAll(req.Body)
			if err != nil {
				return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
			}
			req.Body = io.NopCloser(bytes.NewReader(body))

			var gqlReq GraphQLRequest
			parsed := json.Unmarshal(body, &gqlReq) == nil
			if parsed && gqlReq.OperationName != "" {
				fields["operation"] = gqlReq.OperationName
			}
			ctx := logger.WithLogger(req.Context(), fields)
			c.SetRequest(req.WithContext(ctx))

			if parsed {
				logDocument(ctx, gqlReq)
			}
			return next(c)
		}
	}
}

func logDocument(ctx context.Context, req GraphQLRequest) {
	if req.OperationName != "" {
		logger.InfoLog(ctx, "graphql operation %s: %s", req.OperationName, req.Query)
		return
	}
	logger.InfoLog(ctx, "graphql document: %s", req.Query)
}

func statusForCode(code string) int {
	switch code {
	case graph.CodeNotFound:
		return http.StatusNotFound
	case graph.CodeValidation:
		return http.StatusBadRequest
	case graph.CodeUpstreamFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func graphQLErrors(err error) []*gqlerrors.QueryError {
	var qerr *gqlerrors.QueryError
	if errors.As(err, &qerr) {
		return []*gqlerrors.QueryError{qerr}
	}
	return []*gqlerrors.QueryError{gqlerrors.Errorf("%s", err)}
}
