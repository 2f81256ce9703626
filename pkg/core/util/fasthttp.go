package util

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	json "github.com/json-iterator/go"
	"github.com/tidwall/gjson"
	"github.com/valyala/fasthttp"
)

type Header struct {
	Key   string
	Value string
}

var client = &fasthttp.Client{
	Name:                "linktrack",
	MaxConnsPerHost:     256,
	ReadTimeout:         5 * time.Second,
	WriteTimeout:        5 * time.Second,
	MaxIdleConnDuration: time.Minute,
}

// deadline 取 ctx 截止时间与 timeout 中较早者
func deadline(ctx context.Context, timeout time.Duration) time.Time {
	d := time.Now().Add(timeout)
	if ctx != nil {
		if cd, ok := ctx.Deadline(); ok && cd.Before(d) {
			return cd
		}
	}
	return d
}

func do(ctx context.Context, req *fasthttp.Request, timeout time.Duration) (*gjson.Result, error) {
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if err := client.DoDeadline(req, resp, deadline(ctx, timeout)); err != nil {
		return nil, err
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("%s %s failed, status code: %d", req.Header.Method(), req.URI().String(), resp.StatusCode())
	}
	body := resp.Body()
	if len(body) == 0 {
		return nil, errors.New("response body is empty")
	}
	// gjson 结果引用 body，需拷贝后再释放 response
	result := gjson.ParseBytes(append([]byte(nil), body...))
	return &result, nil
}

// HttpGet 发起 GET 请求并以 gjson 解析响应
func HttpGet(ctx context.Context, uri string, query map[string]string, timeout time.Duration, headers ...Header) (*gjson.Result, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)

	if len(query) > 0 {
		values := url.Values{}
		for k, v := range query {
			values.Set(k, v)
		}
		uri += "?" + values.Encode()
	}
	req.Header.SetMethod(fasthttp.MethodGet)
	req.SetRequestURI(uri)
	for _, h := range headers {
		req.Header.Set(h.Key, h.Value)
	}
	return do(ctx, req, timeout)
}

// HttpPost 以 JSON 形式提交 body
func HttpPost(ctx context.Context, uri string, body interface{}, timeout time.Duration, headers ...Header) (*gjson.Result, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)

	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetRequestURI(uri)
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		req.SetBody(b)
	}
	for _, h := range headers {
		req.Header.Set(h.Key, h.Value)
	}
	return do(ctx, req, timeout)
}
