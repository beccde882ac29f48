// Package mocks 提供协议模块的模拟实现
//
// 所有 XxxFunc 字段都是可选的；为 nil 时使用内置的默认行为。
// 调用记录受互斥锁保护，可在事件循环 goroutine 运行时从测试 goroutine 读取。
package mocks
