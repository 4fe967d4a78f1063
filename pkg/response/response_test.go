package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func record(fn func(c *gin.Context)) (*httptest.ResponseRecorder, Response) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	fn(c)
	var resp Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestValidationFailed_FieldDetails(t *testing.T) {
	type req struct {
		Day int `validate:"max=6"`
	}
	err := validator.New().Struct(req{Day: 7})

	w, resp := record(func(c *gin.Context) { ValidationFailed(c, err) })
	if w.Code != http.StatusBadRequest || resp.Code != 10001 {
		t.Fatalf("期望 400/10001，实际 %d/%d", w.Code, resp.Code)
	}
	details, ok := resp.Details.([]interface{})
	if !ok || len(details) != 1 {
		t.Fatalf("details 不符: %#v", resp.Details)
	}
	fe := details[0].(map[string]interface{})
	if fe["field"] != "Day" || fe["rule"] != "max" || fe["param"] != "6" {
		t.Errorf("字段明细不符: %#v", fe)
	}
}

func TestInternalError_Exposure(t *testing.T) {
	_, hidden := record(func(c *gin.Context) { InternalError(c, errors.New("pq: boom")) })
	if hidden.Details != nil {
		t.Errorf("默认不应暴露错误详情: %#v", hidden.Details)
	}

	_, exposed := record(func(c *gin.Context) {
		c.Set(ExposeErrorsKey, true)
		InternalError(c, errors.New("pq: boom"))
	})
	if exposed.Code != 50000 || exposed.Details != "pq: boom" {
		t.Errorf("非生产环境应携带详情，实际 %#v", exposed)
	}
}

func TestNoContent(t *testing.T) {
	w, _ := record(func(c *gin.Context) {
		NoContent(c)
		c.Writer.WriteHeaderNow()
	})
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Errorf("期望 204 空响应，实际 %d %q", w.Code, w.Body.String())
	}
}
