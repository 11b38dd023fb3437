// Package main Digiworldadda Storefront API
//
//	@title						Digiworldadda Storefront API
//	@version					1.0
//	@description				Digital goods storefront backend with Razorpay checkout
//
//	@contact.name				Digiworldadda Support
//	@contact.email				support@digiworldadda.com
//
//	@host						localhost:8080
//	@BasePath					/api
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"
//
//	@tag.name					Payment
//	@tag.description			Checkout initiation and confirmation
//
//	@tag.name					Catalog
//	@tag.description			Product and service catalog
//
//	@tag.name					Users
//	@tag.description			Customer accounts
package main
