package cvedb

import (
	"context"
	"errors"
	"fmt"
)

// ErrInvalidFormat CVE编号格式错误，永远不会重试
var ErrInvalidFormat = errors.New("Invalid CVE format. Use CVE-YYYY-XXXXX")

// ErrIdentifierMismatch 返回的记录与请求的编号不一致
var ErrIdentifierMismatch = errors.New("CVE记录编号与请求不一致")

// FormatError 输入不符合 CVE-YYYY-N
type FormatError struct {
	Input string
}

func (e *FormatError) Error() string {
	return ErrInvalidFormat.Error()
}

func (e *FormatError) Unwrap() error {
	return ErrInvalidFormat
}

// NetworkError 非2xx响应或传输层失败
type NetworkError struct {
	CVEID      string
	StatusCode int
	Status     string // 状态文本，如 "Not Found"
	Err        error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("Failed to fetch CVE data: %v", e.Err)
	}
	return fmt.Sprintf("Failed to fetch CVE data: %s", e.Status)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ParseError 响应体无法解析为CVE记录
type ParseError struct {
	CVEID string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("解析CVE数据失败 %s: %v", e.CVEID, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsCanceled 请求是否因调用方取消而终止
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// ErrorKind 用于日志和指标的错误分类
type ErrorKind string

const (
	KindNone     ErrorKind = ""
	KindFormat   ErrorKind = "format"
	KindNetwork  ErrorKind = "network"
	KindParse    ErrorKind = "parse"
	KindCanceled ErrorKind = "canceled"
	KindUnknown  ErrorKind = "unknown"
)

func Kind(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	if IsCanceled(err) {
		return KindCanceled
	}

	var formatErr *FormatError
	var netErr *NetworkError
	var parseErr *ParseError
	switch {
	case errors.As(err, &formatErr), errors.Is(err, ErrInvalidFormat):
		return KindFormat
	case errors.As(err, &parseErr):
		return KindParse
	case errors.As(err, &netErr):
		return KindNetwork
	}
	return KindUnknown
}
