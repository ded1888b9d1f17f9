package main

// @title Multiplication Service
// @version 1.0.0
// @description Multiplies two numbers, with structured logging, telemetry records and OpenTelemetry tracing

// @contact.name API Support
// @contact.url http://github.com/tair/multiplication-service

// @license.name MIT

// @BasePath /

// @tag.name Multiplication
// @tag.description Arithmetic endpoints

// @tag.name Health
// @tag.description Health check endpoints
