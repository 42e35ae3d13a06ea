package cfn

// Stack output keys, shared by the stack declaration and the provisioning driver.
const (
	OutputsCacheEndpointAddress     = "CacheEndpointAddress"
	OutputsBucketName               = "BucketName"
	OutputsFunctionUrl1             = "FunctionUrl1" // preprocessor
	OutputsFunctionUrl2             = "FunctionUrl2" // embedder
	OutputsPreprocessorFunctionName = "PreprocessorFunctionName"
	OutputsEmbedderFunctionName     = "EmbedderFunctionName"
)
