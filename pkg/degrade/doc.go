// Package degrade models the default-and-continue error policy.
//
// Operations on the render path never fail outright: a malformed timer, an
// unreadable cache or a full storage backend all fall back to a safe value.
// Result keeps that fallback behavior but records that it happened, and why,
// so callers and tests can tell a real value from a substituted one.
package degrade
