/*
 * @module testutil/test_helper
 * @description 测试工具和辅助函数
 * @architecture 测试基础设施 - 提供样例数据集、HTTP请求构造与事件发布Mock
 * @stateFlow 样例CSV -> 加载器 -> Dataset；构造请求 -> 执行 -> 断言响应
 * @rules 提供可重用的测试工具，确保测试数据在各包之间一致
 * @dependencies testify, service/loader, service/event
 * @refs service/dataset
 */

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"sales-dashboard-service/service/dataset"
	"sales-dashboard-service/service/event"
	"sales-dashboard-service/service/loader"
)

// SampleCSV 样例销售数据
//
// 汇总值：Sales=1065.5，Profit=-26.5，Quantity=17，订单数6，平均折扣0.11；
// CA-5缺少Order Date，CA-6缺少Region
const SampleCSV = `Order ID,Order Date,Ship Date,Ship Mode,Segment,Region,Category,Sub-Category,Product Name,Sales,Quantity,Discount,Profit
CA-1,2023-01-05,2023-01-08,Second Class,Consumer,East,Technology,Phones,Apple iPhone,100,2,0,20
CA-2,2023-02-10,2023-02-12,Standard Class,Corporate,West,Technology,Accessories,Logitech Mouse,50,1,0.2,5
CA-2,2023-02-10,2023-02-12,Standard Class,Corporate,West,Furniture,Chairs,Office Chair,300,3,0.1,-30
CA-3,2023-02-20,2023-02-21,First Class,Home Office,Central,Office Supplies,Paper,Copy Paper,20,4,0,8
CA-4,2023-03-15,2023-03-15,Same Day,Consumer,South,Furniture,Tables,Dining Table,500,1,0.3,-50
CA-5,,2023-03-20,Standard Class,Consumer,East,Office Supplies,Binders,Binder,15.5,5,0.2,4.5
CA-6,2023-03-30,2023-04-02,Second Class,Corporate,,Technology,Phones,Apple iPhone,80,1,0,16
`

// SampleDateColumns 样例数据的日期列
var SampleDateColumns = []string{dataset.ColOrderDate, dataset.ColShipDate}

// SampleDataset 加载样例数据集
func SampleDataset(t testing.TB) *dataset.Dataset {
	t.Helper()
	return LoadCSV(t, "sample.csv", SampleCSV)
}

// LoadCSV 通过加载器读取CSV文本
func LoadCSV(t testing.TB, name, content string) *dataset.Dataset {
	t.Helper()
	l := loader.NewLoader(loader.Options{DateColumns: SampleDateColumns})
	ds, err := l.Load(context.Background(), loader.Source{Name: name, Reader: strings.NewReader(content)})
	if err != nil {
		t.Fatalf("加载测试数据失败: %v", err)
	}
	return ds
}

// MockPublisher 事件发布Mock
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, evt event.Event) error {
	args := m.Called(ctx, evt)
	return args.Error(0)
}

// HTTPTestHelper HTTP测试辅助工具
type HTTPTestHelper struct{}

// NewHTTPTestHelper 创建HTTP测试辅助工具
func NewHTTPTestHelper() *HTTPTestHelper {
	return &HTTPTestHelper{}
}

// CreateJSONRequest 创建JSON请求
func (h *HTTPTestHelper) CreateJSONRequest(method, url string, body interface{}) (*http.Request, error) {
	var reqBody io.Reader

	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// CreateUploadRequest 创建multipart文件上传请求
func (h *HTTPTestHelper) CreateUploadRequest(url, filename string, content []byte, fields map[string]string) (*http.Request, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(content); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, url, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req, nil
}

// DecodeResponse 解析统一响应包装
func (h *HTTPTestHelper) DecodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("响应不是JSON: %v, body=%s", err, w.Body.String())
	}
	return body
}

// AssertJSONResponse 断言JSON响应
func (h *HTTPTestHelper) AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedBody interface{}) {
	assert.Equal(t, expectedStatus, w.Code)

	if expectedBody != nil {
		var actualBody interface{}
		err := json.Unmarshal(w.Body.Bytes(), &actualBody)
		assert.NoError(t, err)

		expectedJSON, _ := json.Marshal(expectedBody)
		actualJSON, _ := json.Marshal(actualBody)

		assert.JSONEq(t, string(expectedJSON), string(actualJSON))
	}
}
