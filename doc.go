// Appbuild is a builder for Android application
// projects that uses Blueprint to parse Android.bp
// files and Ninja to do the dependency tracking and
// subprocess management. Appbuild itself is
// responsible for expanding the modules read by
// Blueprint into build variants, and for converting
// each variant into the resource linking, compiling,
// dexing, packaging and signing rules that are
// written to a build.ninja file by Blueprint.
//
// Application build concepts:
//
// Module
// A module is a definition of something to be built:
// an Android app, an Android library, a prebuilt jar,
// an instrumentation test, or one of the
// configuration modules that describe build types,
// product flavors and signing configs.
//
// Build type
// A named way of building a module, most commonly
// "debug" and "release". A build type controls
// debuggability, signing, minification and zipalign,
// and may rename the application package with a
// suffix so several build types of the same app
// install side by side.
//
// Product flavor
// A marketable configuration of an app, for example
// "free" and "paid". A flavor may override the
// application package name, version, minimum sdk
// version and signing config, and contributes its
// own source set to the variant.
//
// Flavor dimension
// An axis of product flavors. When flavors span more
// than one dimension, one flavor from each dimension
// combines into every variant, in the declared
// dimension order.
//
// Variant
// One buildable configuration of a module: the
// combination of one flavor per dimension plus one
// build type, for example "free-debug". Every module
// is built once per variant, and all rules and
// intermediate files are segregated per variant.
//
// Source set
// The directory layout contributing sources to a
// variant: java sources, Android resources, assets,
// jni libraries and aidl files. The default source
// set lives at the module directory, and each build
// type and product flavor may provide an overlay
// source set under src/<name>/.
//
// Signing config
// The keystore, key alias and passwords used to sign
// an apk. Debug signed build types fall back to the
// SDK debug keystore in the user's home directory. A
// variant with no usable signing config produces an
// unsigned package.
//
// Module under test
// The android_app or android_library that an
// android_test module instruments. The test builds
// against the tested variant's classes and installs
// alongside it, with an instrumentation manifest
// generated from the tested package.
package appbuild
