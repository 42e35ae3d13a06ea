package policy

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/awslabs/goformation/v7/cloudformation"
)

const defaultRedisPort = 6379

func isAnywhere(cidr, cidrv6 *string) bool {
	return (cidr != nil && *cidr == "0.0.0.0/0") || (cidrv6 != nil && *cidrv6 == "::/0")
}

func coversPort(protocol string, from, to *int, port int) bool {
	if protocol == "-1" || protocol == "all" {
		return true
	}
	if from == nil {
		return false
	}
	upper := *from
	if to != nil {
		upper = *to
	}
	return *from <= port && port <= upper
}

func cachePorts(tmpl *cloudformation.Template) []int {
	var ports []int
	for _, cluster := range tmpl.GetAllElastiCacheCacheClusterResources() {
		port := defaultRedisPort
		if cluster.Port != nil {
			port = *cluster.Port
		}
		if !slices.Contains(ports, port) {
			ports = append(ports, port)
		}
	}
	return ports
}

func checkCacheIngress(tmpl *cloudformation.Template) []Finding {
	ports := cachePorts(tmpl)
	if len(ports) == 0 {
		return nil
	}

	var findings []Finding
	report := func(id string, port int) {
		findings = append(findings, Finding{
			Rule:      RuleOpenCacheIngress,
			Severity:  SeverityError,
			LogicalID: id,
			Message:   fmt.Sprintf("cache port %d is open to the internet", port),
		})
	}
	for id, sg := range tmpl.GetAllEC2SecurityGroupResources() {
		for _, ingress := range sg.SecurityGroupIngress {
			if !isAnywhere(ingress.CidrIp, ingress.CidrIpv6) {
				continue
			}
			for _, port := range ports {
				if coversPort(ingress.IpProtocol, ingress.FromPort, ingress.ToPort, port) {
					report(id, port)
				}
			}
		}
	}
	for id, ingress := range tmpl.GetAllEC2SecurityGroupIngressResources() {
		if !isAnywhere(ingress.CidrIp, ingress.CidrIpv6) {
			continue
		}
		for _, port := range ports {
			if coversPort(ingress.IpProtocol, ingress.FromPort, ingress.ToPort, port) {
				report(id, port)
			}
		}
	}
	return findings
}

// stringList accepts the string-or-list shape of IAM policy fields.
func stringList(v any) []string {
	switch v := v.(type) {
	case string:
		return []string{v}
	case []any:
		var out []string
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return v
	}
	return nil
}

func statements(document any) []map[string]any {
	doc, ok := document.(map[string]any)
	if !ok {
		return nil
	}
	switch s := doc["Statement"].(type) {
	case map[string]any:
		return []map[string]any{s}
	case []any:
		var out []map[string]any
		for _, item := range s {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

// wildcardActions returns the service-wide actions of an Allow statement on all resources.
func wildcardActions(statement map[string]any) []string {
	if effect, _ := statement["Effect"].(string); effect != "Allow" {
		return nil
	}
	if !slices.Contains(stringList(statement["Resource"]), "*") {
		return nil
	}
	var actions []string
	for _, action := range stringList(statement["Action"]) {
		if action == "*" || strings.HasSuffix(action, ":*") {
			actions = append(actions, action)
		}
	}
	return actions
}

func checkWildcardIAM(tmpl *cloudformation.Template) []Finding {
	documents := map[string][]any{}
	for id, policy := range tmpl.GetAllIAMPolicyResources() {
		documents[id] = append(documents[id], policy.PolicyDocument)
	}
	for id, policy := range tmpl.GetAllIAMManagedPolicyResources() {
		documents[id] = append(documents[id], policy.PolicyDocument)
	}
	for id, role := range tmpl.GetAllIAMRoleResources() {
		for _, policy := range role.Policies {
			documents[id] = append(documents[id], policy.PolicyDocument)
		}
	}

	var findings []Finding
	for id, docs := range documents {
		var actions []string
		for _, doc := range docs {
			for _, statement := range statements(doc) {
				actions = append(actions, wildcardActions(statement)...)
			}
		}
		if len(actions) == 0 {
			continue
		}
		sort.Strings(actions)
		findings = append(findings, Finding{
			Rule:      RuleWildcardIAM,
			Severity:  SeverityWarning,
			LogicalID: id,
			Message:   fmt.Sprintf("allows %s on all resources", strings.Join(slices.Compact(actions), ", ")),
		})
	}
	return findings
}

func checkFunctionURLs(tmpl *cloudformation.Template) []Finding {
	var findings []Finding
	for id, url := range tmpl.GetAllLambdaUrlResources() {
		if url.AuthType == "NONE" {
			findings = append(findings, Finding{
				Rule:      RulePublicFunctionURL,
				Severity:  SeverityWarning,
				LogicalID: id,
				Message:   "function URL does not require authentication",
			})
		}
		if url.Cors != nil && slices.Contains(url.Cors.AllowOrigins, "*") {
			findings = append(findings, Finding{
				Rule:      RuleOpenCors,
				Severity:  SeverityWarning,
				LogicalID: id,
				Message:   "function URL allows cross-origin requests from any origin",
			})
		}
	}
	return findings
}

func checkBuckets(tmpl *cloudformation.Template) []Finding {
	var findings []Finding
	for id, bucket := range tmpl.GetAllS3BucketResources() {
		// CloudFormation deletes resources without a DeletionPolicy
		if policy := string(bucket.AWSCloudFormationDeletionPolicy); policy == "" || policy == "Delete" {
			findings = append(findings, Finding{
				Rule:      RuleDestroyBucket,
				Severity:  SeverityInfo,
				LogicalID: id,
				Message:   "bucket and its objects are deleted with the stack",
			})
		}
	}
	return findings
}

func checkCacheEncryption(tmpl *cloudformation.Template) []Finding {
	var findings []Finding
	for id, cluster := range tmpl.GetAllElastiCacheCacheClusterResources() {
		if cluster.Engine == "memcached" {
			continue
		}
		if cluster.TransitEncryptionEnabled == nil || !*cluster.TransitEncryptionEnabled {
			findings = append(findings, Finding{
				Rule:      RulePlaintextCache,
				Severity:  SeverityWarning,
				LogicalID: id,
				Message:   "cache traffic is not encrypted in transit",
			})
		}
	}
	return findings
}
